package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "clipctl",
	Short: "Clipctl is a command line tool for interacting with the clipline pipeline",
	Long: `clipctl is the command-line interface for the clipline video clipping pipeline.

Clipline turns long-form video into short clips through a queue of pipeline
stages (transcription, analysis, video cutting) coordinated over Postgres:

  - Controller: HTTP API for project intake and the client polling surface
  - Workers: pull queued stage jobs and run them against the media backend

Common workflows:

  Register a project for a staged upload:
    clipctl create --title "Launch keynote" --upload up-123

  Follow pipeline progress:
    clipctl status <project-id>
    clipctl jobs <project-id>

  Queue a stage by hand:
    clipctl enqueue <project-id> --type transcription --payload '{"source_object":"sources/a.mp4"}'

  List suggested and rendered clips:
    clipctl clips <project-id>

Configuration:
  Set the API endpoint via environment variable or a config file:
    CLIPLINE_URL    API endpoint (default: http://localhost:8080)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".clipctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".clipctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "CLIPLINE_VARNAME"
	viper.SetEnvPrefix("CLIPLINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clipctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Clipline Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
