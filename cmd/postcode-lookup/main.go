// Postcode-lookup is a command-line companion to the lookup service.
//
// It runs lookups in-process, drives the field interaction flow against a
// running server, and prints rendered field markup.
//
// Usage:
//
//	postcode-lookup [command] [flags]
//
// See 'postcode-lookup --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"postcode_lookup/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "postcode-lookup",
	Short: "UK postcode address lookup utility",
	Long: `A command-line utility for the postcode lookup service.

Looks up addresses for a postcode using the configured provider keys,
walks through the search and select flow against a running server, and
renders form field markup from the form definitions file.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "postcode-lookup %s (commit: %s)\n", version.Version, version.Commit)
	},
}
