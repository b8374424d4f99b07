package main

import (
	"fmt"
	"os"

	"github.com/josephshahen/nibras-api/cmd/assistantctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "assistantctl",
		Short: "Operations tool for the Nibras assistant API",
		Long:  "CLI tool for triggering refresh passes and inspecting assistant accounts",
	}

	rootCmd.AddCommand(commands.NewRefreshCmd())
	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewFeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
