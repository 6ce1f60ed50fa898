// Package main implements the contextrank CLI: rank sentences or contexts
// from files, serve the HTTP API, or run the MCP server on stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	language   string
	threshold  float64
	epsilon    float64
	separator  string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "contextrank",
		Short: "Extractive relevance ranking for LLM context windows",
		Long: `contextrank reduces a body of text to the sentences that best represent it
(LexRank) and orders candidate passages for a query with per-language
features, so that a language model with a bounded context window sees the
most relevant text.

Configuration is read from --config (YAML) and CONTEXTRANK_* environment
variables, e.g. CONTEXTRANK_LEXRANK_THRESHOLD=0.2.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to YAML config file")
	flags.StringVar(&opts.language, "language", "", "language code, locale or name (default from config)")
	flags.Float64Var(&opts.threshold, "threshold", 0, "similarity threshold in [0,1) (default from config)")
	flags.Float64Var(&opts.epsilon, "epsilon", 0, "power iteration tolerance (default from config)")
	flags.StringVar(&opts.separator, "separator", " ", "separator placed between selected sentences")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of text")

	cmd.AddCommand(
		newSentencesCmd(opts),
		newContextsCmd(opts),
		newLanguagesCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "contextrank by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
