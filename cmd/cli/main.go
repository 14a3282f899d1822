// Package main is the entry point for the clipline CLI.
// The CLI is the developer terminal tool for interacting with the clipline API.
package main

import (
	"os"

	"clipline/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
