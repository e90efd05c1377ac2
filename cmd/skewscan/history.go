package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/database"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id] | --compare [from-id to-id]",
		Short: "List, show and compare recorded classification runs",
		Long: `History works with the runs recorded by classify and run.

Without arguments it lists every run, newest first. With a run id (or a
unique prefix of one) it prints that run's report. --compare shows which
pages were added to or removed from each reason between two runs; without
ids it compares the two latest runs.

Examples:
  # List runs
  skewscan history

  # Show one run as a breakdown
  skewscan history --format breakdown 3f2a

  # What changed since the previous run?
  skewscan history --compare

  # Compare two runs as JSON
  skewscan history --compare 3f2a 9b1c --json

  # Forget a run
  skewscan history --delete 3f2a`,
		Args: cobra.MaximumNArgs(2),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List recorded runs (default without arguments)")
	cmd.Flags().IntP("limit", "n", 0, "Show only the newest N runs")
	cmd.Flags().Bool("compare", false, "Compare two runs (default: the latest two)")
	cmd.Flags().String("delete", "", "Delete the run with this id")
	cmd.Flags().String("db-dir", "", "Run history directory (default: XDG data directory)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	if compare && len(args) == 1 {
		return errors.New("--compare needs two run ids or none")
	}
	if !compare && len(args) > 1 {
		return errors.New("too many arguments (use --compare to compare two runs)")
	}

	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}

	switch {
	case deleteID != "":
		if err := db.DeleteRun(ctx, deleteID); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		fmt.Fprintf(out, "Deleted run %s\n", deleteID)
		return nil
	case compare:
		return compareRuns(ctx, db, args, out, cfg.JSONReport)
	case len(args) == 1:
		return showRun(ctx, db, args[0], cmd, cfg)
	default:
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return listRuns(ctx, db, out, limit, cfg.JSONReport)
	}
}

// listRuns prints the run history, newest first.
func listRuns(ctx context.Context, db *database.RunDB, out io.Writer, limit int, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "\nUse 'skewscan classify <dir>' to classify a corpus.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-8s  %-19s  %6s  %7s  %s\n", "ID", "Date", "Pages", "Flagged", "Reasons")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-8s  %-19s  %6d  %7d  %s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.CorpusSize,
			r.Flagged,
			formatCounts(r.Counts),
		)
	}

	fmt.Fprintln(out, "\nUse 'skewscan history <id>' to show a run.")
	fmt.Fprintln(out, "Use 'skewscan history --compare' to compare the latest two runs.")
	return nil
}

// showRun renders one stored run with the selected report format.
func showRun(ctx context.Context, db *database.RunDB, id string, cmd *cobra.Command, cfg *config.Config) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	out, closer, err := reportOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	w, err := report.New(cfg.ReportFormat(), out)
	if err != nil {
		return err
	}
	_, err = w.Write(run)
	return err
}

// compareRuns prints what changed between two runs.
func compareRuns(ctx context.Context, db *database.RunDB, args []string, out io.Writer, jsonOutput bool) error {
	var fromID, toID string
	if len(args) == 2 {
		fromID, toID = args[0], args[1]
	} else {
		latest, err := db.LatestRuns(ctx, 2)
		if err != nil {
			return fmt.Errorf("failed to get latest runs: %w", err)
		}
		if len(latest) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
		}
		fromID, toID = latest[1].ID, latest[0].ID
	}

	diff, err := db.CompareRuns(ctx, fromID, toID)
	if err != nil {
		return fmt.Errorf("failed to compare runs: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	}
	writeDiff(out, diff)
	return nil
}

// writeDiff prints a RunDiff as text, one section per changed reason.
func writeDiff(out io.Writer, diff *model.RunDiff) {
	fmt.Fprintf(out, "Comparing %s -> %s\n\n", shortID(diff.From), shortID(diff.To))
	if diff.Empty() {
		fmt.Fprintln(out, "No differences.")
		return
	}

	for _, reason := range model.AllSkewReasons() {
		added, removed := diff.Added[reason], diff.Removed[reason]
		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s (+%d -%d)\n", reason, len(added), len(removed))
		for _, id := range added {
			fmt.Fprintf(out, "  + %s\n", id)
		}
		for _, id := range removed {
			fmt.Fprintf(out, "  - %s\n", id)
		}
	}
}

// formatCounts renders per-reason counts compactly, e.g. "LAST_LINE:3".
func formatCounts(counts map[model.SkewReason]int) string {
	parts := make([]string, 0, len(counts))
	for _, reason := range model.AllSkewReasons() {
		if n := counts[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", reason, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// shortID abbreviates a run UUID for tables.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
