package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/ocr"
)

// NewOCRCmd creates the ocr command.
func NewOCRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr",
		Short: "Recognize page scans into the text corpus",
		Long: `OCR runs tesseract over every image in the scan directory and writes
one .txt page per image into the corpus directory. Images are processed in
batches by a fixed number of workers.

Pages that already have a text file are skipped unless --force is given,
so hand-corrected pages are not overwritten.

Examples:
  skewscan ocr --in images --out txt
  skewscan ocr --workers 2 --psm 1`,
		Args: cobra.NoArgs,
		RunE: runOCRCmd,
	}

	cmd.Flags().String("in", config.DefaultImageDir, "Directory of page scans")
	cmd.Flags().String("out", config.DefaultCorpusDir, "Directory for text pages")
	addOCRFlags(cmd, "workers")
	cmd.Flags().Bool("force", false, "Recognize images that already have text")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")

	return cmd
}

// ocrBindings maps the ocr command's own flag names.
var ocrBindings = map[string]binder{
	"in":      stringFlag("in", func(c *config.Config, v string) { c.ImageDir = v }),
	"out":     stringFlag("out", func(c *config.Config, v string) { c.CorpusDir = v }),
	"workers": intFlag("workers", func(c *config.Config, v int) { c.OCRWorkers = v }),
}

// runOCRCmd executes the ocr command.
func runOCRCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, ocrBindings)
	if err != nil {
		return err
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
	res, err := newConverter(cfg, rec, logger).ConvertDir(cmd.Context(), cfg.ImageDir, cfg.CorpusDir)
	writeMetrics(cfg, rec, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pages in %s: %d recognized, %d skipped, %d failed (%s)\n",
		cfg.CorpusDir, res.Succeeded, res.Skipped, res.Failed, res.Elapsed.Round(time.Millisecond))
	return nil
}

// newConverter builds an ocr.Converter from cfg.
func newConverter(cfg *config.Config, rec *metrics.Recorder, logger *slog.Logger) *ocr.Converter {
	engine := ocr.NewDefaultEngine(cfg.TesseractPath, cfg.OCRLanguage, cfg.PageSegMode)
	return ocr.NewConverter(engine,
		ocr.WithWorkers(cfg.OCRWorkers),
		ocr.WithBatchSize(cfg.OCRBatchSize),
		ocr.WithForce(cfg.Force),
		ocr.WithLogger(logger),
		ocr.WithRecorder(rec),
	)
}
