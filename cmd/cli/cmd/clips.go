package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var clipsCmd = &cobra.Command{
	Use:   "clips [project_id]",
	Short: "List clips of a project",
	Long:  `List all suggested and rendered clips of a project with their time ranges and status.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"))
		clips, err := client.ListClips(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(clips) == 0 {
			cmd.Println("No clips found")
			return
		}

		cmd.Printf("%s%-36s  %-30s  %9s  %9s  %s%s\n",
			colorBold, "ID", "TITLE", "START", "END", "STATUS", colorReset)
		for _, clip := range clips {
			title := clip.Title
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			cmd.Printf("%-36s  %-30s  %8.1fs  %8.1fs  %s\n",
				clip.ID, title, clip.StartSeconds, clip.EndSeconds, clip.Status)
		}
	},
}

func init() {
	rootCmd.AddCommand(clipsCmd)
}
