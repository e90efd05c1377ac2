package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/preview"
)

// NewOpenCmd creates the open command.
func NewOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [page-id...]",
		Short: "Open pages or their scans for manual review",
		Long: `Open launches the system viewer for text pages or, with --images, the
scans they were recognized from.

Pages are named by id ("0-abbot.txt"; the .txt suffix may be left off).
--flagged opens every page flagged by the latest recorded run, or by the
run given with --run, optionally limited to one --reason.

Examples:
  # Open two pages
  skewscan open 0-abbot 12-abe

  # Review the scans of every page with too many empty lines
  skewscan open --flagged --reason TOO_MANY_EMPTY_LINES --images images

  # Print scan details instead of opening
  skewscan open --flagged --images images --info`,
		RunE: runOpenCmd,
	}

	cmd.Flags().String("dir", "", "Corpus directory holding the text pages")
	cmd.Flags().String("images", "", "Open scans from this directory instead of text pages")
	cmd.Flags().Bool("flagged", false, "Open pages flagged by a recorded run")
	cmd.Flags().String("run", "", "Run id for --flagged (default: latest run)")
	cmd.Flags().String("reason", "", "Only pages flagged for this reason")
	cmd.Flags().Bool("info", false, "Print file details instead of opening")
	cmd.Flags().Bool("dry-run", false, "Print the paths that would be opened")
	cmd.Flags().String("db-dir", "", "Run history directory (default: XDG data directory)")

	return cmd
}

// runOpenCmd executes the open command.
func runOpenCmd(cmd *cobra.Command, args []string) error {
	flagged, err := cmd.Flags().GetBool("flagged")
	if err != nil {
		return err
	}
	if !flagged && len(args) == 0 {
		return errors.New("no pages given (pass page ids or --flagged)")
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	logger, logCloser, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ids := make([]string, 0, len(args))
	for _, a := range args {
		ids = append(ids, pageID(a))
	}

	if flagged {
		runID, _ := cmd.Flags().GetString("run")
		reasonName, _ := cmd.Flags().GetString("reason")
		more, err := flaggedIDs(cmd, cfg, runID, reasonName)
		if err != nil {
			return err
		}
		ids = append(ids, more...)
	}

	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintln(out, "No pages to open.")
		return nil
	}

	images := cmd.Flags().Changed("images")
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		if !images {
			paths = append(paths, filepath.Join(cfg.CorpusDir, id))
			continue
		}
		p, err := preview.ImagePath(cfg.ImageDir, id)
		if err != nil {
			logger.Warn("no scan for page", "page", id, "error", err)
			continue
		}
		paths = append(paths, p)
	}

	info, _ := cmd.Flags().GetBool("info")
	if info {
		return printInfo(cmd, paths)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	}

	res, err := preview.NewOpener(preview.WithLogger(logger)).Open(cmd.Context(), paths)
	fmt.Fprintf(out, "Opened %d file(s)\n", len(res.Opened))
	if len(res.Missing) > 0 {
		fmt.Fprintf(out, "Missing %d file(s):\n", len(res.Missing))
		for _, m := range res.Missing {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}
	return err
}

// flaggedIDs returns the pages flagged by runID, or by the latest run when
// runID is empty, limited to reasonName when set.
func flaggedIDs(cmd *cobra.Command, cfg *config.Config, runID, reasonName string) ([]string, error) {
	db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx := cmd.Context()
	var run *model.Run
	if runID != "" {
		run, err = db.GetRun(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run: %w", err)
		}
	} else {
		latest, err := db.LatestRuns(ctx, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(latest) == 0 {
			return nil, errors.New("no runs recorded (run 'skewscan classify' first)")
		}
		run = latest[0]
	}
	if run.Result == nil {
		return nil, nil
	}

	if reasonName == "" {
		return run.Result.Flagged(), nil
	}
	reason, err := model.ParseSkewReason(reasonName)
	if err != nil {
		return nil, err
	}
	return run.Result.IDs(reason), nil
}

// printInfo writes one JSON object per path describing the file.
func printInfo(cmd *cobra.Command, paths []string) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	var errs []error
	for _, p := range paths {
		info, err := preview.Inspect(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := enc.Encode(info); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// pageID normalizes a user-supplied page name to a corpus id.
func pageID(arg string) string {
	name := filepath.Base(arg)
	if !strings.HasSuffix(name, corpus.Extension) {
		name += corpus.Extension
	}
	return name
}
