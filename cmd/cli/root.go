package main

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "code-sentry",
	Short: "code-sentry is the command-line interface for the review bot.",
	Long: `A CLI companion to the code-sentry webhook service. It runs the same
lint, format and test checks locally against the last commit, so authors can
see the bot's findings before pushing to a pull request.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
