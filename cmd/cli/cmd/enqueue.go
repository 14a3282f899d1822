package cmd

import (
	"encoding/json"

	"clipline/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [project_id]",
	Short: "Queue one pipeline stage for a project",
	Long: `Queue one pipeline stage job for a project. The job is validated
synchronously and picked up by the next free worker.

Example:
  clipctl enqueue <project-id> --type transcription --payload '{"source_object":"sources/a.mp4"}'
  clipctl enqueue <project-id> --type video_cut --clip <clip-id> \
    --payload '{"source_object":"sources/a.mp4","start_seconds":10,"end_seconds":42}'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		jobType, _ := flags.GetString("type")
		clipID, _ := flags.GetString("clip")
		payload, _ := flags.GetString("payload")

		if jobType == "" {
			cmd.Println("Error: --type is required")
			return
		}
		if payload != "" && !json.Valid([]byte(payload)) {
			cmd.Println("Error: --payload must be valid JSON")
			return
		}

		req := api.EnqueueJobRequest{
			Type:   jobType,
			ClipID: clipID,
		}
		if payload != "" {
			req.Payload = json.RawMessage(payload)
		}

		client := NewClient(viper.GetString("url"))
		result, err := client.EnqueueJob(args[0], req)
		if err != nil {
			printClientError(cmd, err)
			return
		}

		cmd.Printf("✓ Job queued!\nID: %s\n", result.JobID)
	},
}

func init() {
	flags := enqueueCmd.Flags()
	flags.String("type", "", "Stage to run: transcription, analysis, video_cut or upload_transfer (required)")
	flags.String("clip", "", "Clip ID, required for video_cut jobs")
	flags.StringP("payload", "p", "", "Stage payload as JSON")

	rootCmd.AddCommand(enqueueCmd)
}
