package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/pipeline"
	"github.com/kalkar/skewscan/internal/report"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [dir]",
		Short: "Flag skewed pages in an OCR text corpus",
		Long: `Classify reads every .txt page in the corpus directory and flags pages
that look skewed:

  LAST_LINE             the last line is shorter than --last-line characters
  TOO_FEW_COLUMNS       fewer than --columns lines contain " | "
  TOO_MANY_EMPTY_LINES  more than --empty-lines lines are empty

A page may be flagged for several reasons. Runs are recorded in the
history database unless --no-save is given.

Examples:
  # Print flagged page ids
  skewscan classify txt

  # Group pages by reason
  skewscan classify --format breakdown txt

  # Stricter column check, JSON output to a file
  skewscan classify --columns 40 --json -o report.json txt

  # Exempt a page from the last-line check
  skewscan classify --allow 1234-ok.txt txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClassifyCmd,
	}

	addClassifyFlags(cmd)

	return cmd
}

// runClassifyCmd executes the classify command.
func runClassifyCmd(cmd *cobra.Command, args []string) error {
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

	logger, logCloser, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(logCloser, logger)

	rec := metrics.NewRecorder()
	p := pipeline.New(pipeline.WithLogger(logger))

	steps, cleanup, err := classifySteps(cmd, cfg, logger, rec)
	if err != nil {
		return err
	}
	defer cleanup()
	p.AddSteps(steps...)

	run := model.NewRun(uuid.NewString(), cfg.CorpusDir, cfg.Thresholds)
	err = p.Execute(cmd.Context(), run)
	writeMetrics(cfg, rec, logger)
	return err
}

// classifySteps returns the load, classify, report and persist steps for
// cfg. cleanup releases the report file and database.
func classifySteps(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) ([]pipeline.Step, func(), error) {
	out, outCloser, err := reportOutput(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	writer, err := report.New(cfg.ReportFormat(), out)
	if err != nil {
		closeQuietly(outCloser, logger)
		return nil, nil, err
	}

	steps := []pipeline.Step{
		pipeline.NewLoadCorpusStep(corpus.WithLogger(logger)),
		pipeline.NewClassifyStep(
			pipeline.WithWorkers(cfg.Workers),
			pipeline.WithObserver(rec),
			pipeline.WithClassifyLogger(logger),
		),
		pipeline.NewReportStep(writer),
	}
	closers := []func(){func() { closeQuietly(outCloser, logger) }}

	if cfg.SaveToDB {
		db, err := openStore(cfg)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			steps = append(steps, pipeline.NewPersistStep(db))
			closers = append(closers, func() { closeQuietly(db, logger) })
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return steps, cleanup, nil
}
