package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl, recognize and classify in one go",
		Long: `Run chains the whole workflow: download the page scans, recognize them
into the text corpus and classify the result. Existing scans and text
pages are reused, so an interrupted run can simply be started again.

Examples:
  # Full run with defaults
  skewscan run

  # Only re-recognize and classify
  skewscan run --skip-crawl --force

  # Classify the existing corpus with a breakdown report
  skewscan run --skip-crawl --skip-ocr --format breakdown`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().String("dir", config.DefaultCorpusDir, "Corpus directory for text pages")
	cmd.Flags().Bool("skip-crawl", false, "Do not download scans")
	cmd.Flags().Bool("skip-ocr", false, "Do not run OCR")
	cmd.Flags().Bool("force", false, "Re-download and re-recognize existing files")
	cmd.Flags().Bool("continue-on-error", false, "Run later steps even when one fails")
	addCrawlFlags(cmd)
	addOCRFlags(cmd, "ocr-workers")
	addClassifyFlags(cmd)

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	skipCrawl, err := cmd.Flags().GetBool("skip-crawl")
	if err != nil {
		return err
	}
	skipOCR, err := cmd.Flags().GetBool("skip-ocr")
	if err != nil {
		return err
	}
	continueOnError, err := cmd.Flags().GetBool("continue-on-error")
	if err != nil {
		return err
	}

	logger, logCloser, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(logCloser, logger)

	rec := metrics.NewRecorder()
	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(continueOnError),
	)

	if !skipCrawl {
		p.AddStep(pipeline.NewCrawlStep(newScraper(cfg, rec, logger), cfg.ImageDir, logger))
	}
	if !skipOCR {
		p.AddStep(pipeline.NewOCRStep(newConverter(cfg, rec, logger), cfg.ImageDir, logger))
	}

	steps, cleanup, err := classifySteps(cmd, cfg, logger, rec)
	if err != nil {
		return err
	}
	defer cleanup()
	p.AddSteps(steps...)

	logger.Info("starting run", "steps", p.StepNames())

	run := model.NewRun(uuid.NewString(), cfg.CorpusDir, cfg.Thresholds)
	err = p.Execute(cmd.Context(), run)
	writeMetrics(cfg, rec, logger)
	return err
}
