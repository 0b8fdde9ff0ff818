// Package main provides the entry point for the deepfetch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for deepfetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deepfetch",
		Short: "Web content acquisition and deep-search tool",
		Long: `Deepfetch acquires content from the public web. It fetches pages with a
bounded time budget, mines text, tables, download links, and embedded JSON
out of the markup, and runs deep-search crawls that expand a query into a
consolidated text digest across search results and their internal links.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
