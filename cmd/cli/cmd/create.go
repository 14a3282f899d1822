package cmd

import (
	"clipline/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new project",
	Long: `Register a new project for an uploaded source video.

When --upload references a staged upload, the transfer job is queued
immediately and the pipeline starts without further input.

Example:
  clipctl create --title "Launch keynote" --owner 6a1f...
  clipctl create --title "Launch keynote" --owner 6a1f... --upload up-123`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		title, _ := flags.GetString("title")
		ownerID, _ := flags.GetString("owner")
		uploadID, _ := flags.GetString("upload")

		if title == "" {
			cmd.Println("Error: --title is required")
			return
		}
		if ownerID == "" {
			cmd.Println("Error: --owner is required")
			return
		}

		client := NewClient(viper.GetString("url"))
		result, err := client.CreateProject(api.CreateProjectRequest{
			Title:    title,
			OwnerID:  ownerID,
			UploadID: uploadID,
		})
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Project created!\nID: %s\n", result.ProjectID)
		if result.JobID != "" {
			cmd.Printf("Transfer job queued: %s\n", result.JobID)
		}
	},
}

func printClientError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

func init() {
	flags := createCmd.Flags()
	flags.StringP("title", "t", "", "Title of the project (required)")
	flags.StringP("owner", "o", "", "Owner account ID the project belongs to (required)")
	flags.StringP("upload", "u", "", "Staged upload ID to transfer into the project (optional)")

	rootCmd.AddCommand(createCmd)
}
