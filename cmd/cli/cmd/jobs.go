package cmd

import (
	"clipline/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [project_id]",
	Short: "List pipeline jobs of a project",
	Long:  `List all pipeline jobs of a project, newest first, with their status, progress and attempt count.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"))
		jobs, err := client.ListJobs(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found")
			return
		}

		cmd.Printf("%s%-36s  %-15s  %-10s  %8s  %s%s\n",
			colorBold, "ID", "TYPE", "STATUS", "PROGRESS", "AGE", colorReset)
		for _, job := range jobs {
			cmd.Printf("%-36s  %-15s  %-10s  %7d%%  %s\n",
				job.ID, job.Type, job.Status, job.Progress, relativeTime(job.CreatedAt))
		}
	},
}

var jobCmd = &cobra.Command{
	Use:   "job [job_id]",
	Short: "Get status of a single job",
	Long:  `Retrieve detailed status for one pipeline job, including progress, attempt count and result metadata.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(viper.GetString("url"))
		job, err := client.GetJob(args[0])
		if err != nil {
			printClientError(cmd, err)
			return
		}

		printJob(cmd, job)
	},
}

func printJob(cmd *cobra.Command, job *api.JobResponse) {
	icon := statusIcon(job.Status)
	cmd.Printf("%s %sJob Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s        %s\n", colorDim, colorReset, job.ID)
	cmd.Printf("%sProject:%s   %s\n", colorDim, colorReset, job.ProjectID)
	if job.ClipID != "" {
		cmd.Printf("%sClip:%s      %s\n", colorDim, colorReset, job.ClipID)
	}
	cmd.Printf("%sType:%s      %s\n", colorDim, colorReset, job.Type)
	cmd.Printf("%sStatus:%s    %s\n", colorDim, colorReset, colorizeStatus(job.Status))
	cmd.Printf("%sProgress:%s  %d%%\n", colorDim, colorReset, job.Progress)
	cmd.Printf("%sAttempt:%s   %d\n", colorDim, colorReset, job.Attempt)

	if job.Error != nil {
		cmd.Printf("%sError:%s     %s%s%s\n", colorDim, colorReset, colorRed, *job.Error, colorReset)
	}
	if len(job.ResultMetadata) > 0 {
		cmd.Printf("%sResult:%s    %s\n", colorDim, colorReset, string(job.ResultMetadata))
	}

	if job.StartedAt != nil {
		cmd.Printf("%sStarted:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(*job.StartedAt))
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		duration := job.CompletedAt.Sub(*job.StartedAt)
		cmd.Printf("%sFinished:%s  %s %s(%s)%s\n", colorDim, colorReset,
			formatTimeWithRelative(*job.CompletedAt),
			colorCyan, formatDuration(duration), colorReset)
	}
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(jobCmd)
}
