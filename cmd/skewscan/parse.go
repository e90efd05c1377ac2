package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/analyzer"
	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/parser"
)

// DefaultDictionaryFile is where parse writes entries unless told otherwise.
const DefaultDictionaryFile = "dictionary.json"

// NewParseCmd creates the parse command.
func NewParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [dir]",
		Short: "Parse the OCR corpus into dictionary entries",
		Long: `Parse folds the two columns of every page into one, cuts the text into
entries and writes them as JSON. Entries that continue from the previous
page are appended to the entry they belong to.

With --skip-flagged, pages the skew heuristics flag are left out, using
the same thresholds as classify.

Examples:
  # Write dictionary.json from the txt directory
  skewscan parse txt

  # Only the first 50 pages, printed to stdout
  skewscan parse -n 50 -o - txt

  # Leave out skewed pages and write a Markdown glossary
  skewscan parse --skip-flagged --markdown -o dictionary.md txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParseCmd,
	}

	cmd.Flags().StringP("output", "o", DefaultDictionaryFile, `Output file ("-" for stdout)`)
	cmd.Flags().BoolP("markdown", "m", false, "Write a Markdown glossary instead of JSON")
	cmd.Flags().IntP("limit", "n", 0, "Parse only the first n pages (0 for all)")
	cmd.Flags().Bool("skip-flagged", false, "Leave out pages flagged as skewed")
	cmd.Flags().Int("last-line", model.DefaultLastLineLength, "Minimum last line length for --skip-flagged")
	cmd.Flags().Int("columns", model.DefaultColumnMarkers, `Minimum number of lines containing " | " for --skip-flagged`)
	cmd.Flags().Int("empty-lines", model.DefaultEmptyLines, "Maximum number of empty lines for --skip-flagged")
	cmd.Flags().StringSlice("allow", nil, "Page id exempt from the last-line check (repeatable)")

	return cmd
}

// runParseCmd executes the parse command.
func runParseCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.CorpusDir = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	markdown, _ := cmd.Flags().GetBool("markdown")
	limit, _ := cmd.Flags().GetInt("limit")
	skipFlagged, _ := cmd.Flags().GetBool("skip-flagged")
	if limit < 0 {
		return fmt.Errorf("invalid limit: %d", limit)
	}

	logger, logCloser, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(logCloser, logger)

	pages, err := corpus.Load(cmd.Context(), cfg.CorpusDir, corpus.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []parser.Option{parser.WithLogger(logger), parser.WithLimit(limit)}
	if skipFlagged {
		result := analyzer.Classify(pages, cfg.Thresholds)
		opts = append(opts, parser.WithSkip(result.Flagged()...))
	}
	dict := parser.New(opts...).Parse(pages)

	cfg.ReportFile = output
	if output == "-" {
		cfg.ReportFile = ""
	}
	out, outCloser, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(outCloser, logger)

	write := parser.WriteJSON
	if markdown {
		write = parser.WriteMarkdown
	}
	if err := write(out, dict.Entries); err != nil {
		return err
	}

	logger.Debug("parsed corpus",
		"dir", cfg.CorpusDir,
		"pages", dict.Pages,
		"entries", len(dict.Entries),
		"skipped", len(dict.Skipped),
		"unresolved", dict.Unresolved,
	)
	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d entries from %d pages (%d skipped) into %s\n",
			len(dict.Entries), dict.Pages, len(dict.Skipped), cfg.ReportFile)
	}
	return nil
}
