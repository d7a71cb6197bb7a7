// Package cmd defines and implements the CLI commands for the arxiv-relay
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arxiv-relay",
		Short: "Relay newly published arXiv articles to a delivery sink",
		Long: `arxiv-relay searches arXiv for articles submitted in a date window,
optionally translates their titles and abstracts through the DeepL web
translator, and posts the results to a configured sink.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	cmd.AddCommand(newPostCmd())

	return cmd
}

// Execute is the main entry point.
func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
