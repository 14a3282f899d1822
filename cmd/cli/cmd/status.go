package cmd

import (
	"fmt"
	"time"

	"clipline/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status [project_id]",
	Short: "Get status of a project",
	Long:  `Retrieve the pipeline status of a project, including its current stage (uploading, processing, transcribing, analyzing, completed, error) and source metadata.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"))
		project, err := client.GetProject(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printProject(cmd, project)
	},
}

func printProject(cmd *cobra.Command, project *api.ProjectResponse) {
	icon := statusIcon(project.Status)
	cmd.Printf("%s %sProject Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s        %s\n", colorDim, colorReset, project.ID)
	cmd.Printf("%sTitle:%s     %s\n", colorDim, colorReset, project.Title)
	cmd.Printf("%sStatus:%s    %s\n", colorDim, colorReset, colorizeStatus(project.Status))

	if project.SourceObject != nil {
		cmd.Printf("%sSource:%s    %s\n", colorDim, colorReset, *project.SourceObject)
	}
	if project.DurationSeconds != nil {
		cmd.Printf("%sDuration:%s  %s\n", colorDim, colorReset,
			formatDuration(time.Duration(*project.DurationSeconds*float64(time.Second))))
	}
	if project.Error != nil {
		cmd.Printf("%sError:%s     %s%s%s\n", colorDim, colorReset, colorRed, *project.Error, colorReset)
	}

	cmd.Printf("%sCreated:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(project.CreatedAt))
	cmd.Printf("%sUpdated:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(project.UpdatedAt))
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed", "succeeded":
		return colorGreen + "✓" + colorReset
	case "error", "failed":
		return colorRed + "✗" + colorReset
	case "processing", "transcribing", "analyzing", "running":
		return colorYellow + "⏳" + colorReset
	case "uploading", "queued", "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed", "succeeded":
		return icon + " " + colorGreen + status + colorReset
	case "error", "failed":
		return icon + " " + colorRed + status + colorReset
	case "processing", "transcribing", "analyzing", "running":
		return icon + " " + colorYellow + status + colorReset
	case "uploading", "queued", "pending":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	relative := relativeTime(t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
