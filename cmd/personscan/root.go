// Package main provides the entry point for the personscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for personscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personscan",
		Short: "OSINT aggregation engine for person investigations",
		Long: `personscan aggregates open-source intelligence about a person into one
investigation report. It fans a query out to web search, social media,
breach databases, email discovery, domain registration, geolocation,
public records, and government-ID registry sources concurrently, then
merges whatever answered into a single canonical report.

Provider API keys are read from the configuration file; sources without
credentials are skipped rather than failing the search.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: personscan.yml in current dir or XDG config dir)")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSearchCmd())
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
