// Package cli implements the mta command tree. Service dependencies are
// package-level variables wired during app initialization.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "mta",
	Short: "Mail Triage Assistant - AI-assisted customer email processing",
	Long: `Mail Triage Assistant (mta) processes customer service emails for an
electronics distributor: it classifies intent, executes business operations
such as shipment interception and logistics lookups, and produces a
structured reply with a full thinking-process transcript.

It provides commands for processing single emails, running batch analysis
over a tabular email source, browsing business data, and serving the
business operations over MCP.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mta %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
