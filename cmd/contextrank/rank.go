package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/contextrank/internal/logging"
	"github.com/fyrsmithlabs/contextrank/internal/rankservice"
)

func newSentencesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sentences [file|-]",
		Short: "Print the most central sentences of a text",
		Long: `Reduce a text to its most central sentences with LexRank and print them
in document order, joined by --separator.

Reads from the named file, or from stdin when the argument is "-" or omitted.`,
		Example: `  contextrank sentences chapter.txt
  cat chapter.txt | contextrank sentences --language de --threshold 0.2
  contextrank sentences --json chapter.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, opts, logging.WriterStderr)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			req := rankservice.SentencesRequest{Text: string(text)}
			if cmd.Flags().Changed("separator") {
				req.Separator = &opts.separator
			}
			resp, err := a.service.RankSentences(ctx, req)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			if resp.Joined != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Joined)
			}
			return nil
		},
	}
}

func newContextsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contexts [file|-]",
		Short: "Score and order candidate passages",
		Long: `Rank candidate passages read as JSON:

  {
    "language": "en",
    "contexts": [{"text": "...", "position": 12}],
    "metadata": {"total_units": 120, "current_index": 40},
    "features": {"dialogue": false}
  }

Prints one line per passage in rank order, or the annotated request with --json.
--language replaces the default language when the input names none.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var req rankservice.ContextsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("failed to parse contexts input: %w", err)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, opts, logging.WriterStderr)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			resp, err := a.service.RankContexts(ctx, req)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tPOSITION\tSCORE\tWEIGHT\tTEXT")
			for _, c := range resp.Contexts {
				fmt.Fprintf(w, "%d\t%d\t%.2f\t%.2f\t%s\n",
					c.RankOrder, c.Position, c.RankScore, c.RankWeight, truncate(c.Text, 60))
			}
			return w.Flush()
		},
	}
}

func newLanguagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, opts, logging.WriterStderr)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			langs := a.service.Languages()
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), langs)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tFEATURES")
			for _, l := range langs {
				fmt.Fprintf(w, "%s\t%s\t%d\n", l.Code, l.Name, len(l.Features))
			}
			return w.Flush()
		},
	}
}

// readInput reads args[0], or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

// truncate shortens s to at most n runes on one line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
