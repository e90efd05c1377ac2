package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/crawler"
	"github.com/kalkar/skewscan/internal/metrics"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Download the dictionary page scans",
		Long: `Crawl visits the letter index pages of the Kalkar dictionary site and
downloads every linked page scan as <index>-<headword>.gif.

Scans already on disk are skipped unless --force is given.

Examples:
  # Download into ./images
  skewscan crawl

  # Slower and into another directory
  skewscan crawl --delay 2s --concurrency 1 --images scans`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().Bool("force", false, "Re-download scans that already exist")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
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
	scraper := newScraper(cfg, rec, logger)

	res, err := scraper.Acquire(cmd.Context(), cfg.ImageDir)
	writeMetrics(cfg, rec, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scans in %s: %d downloaded, %d skipped, %d failed (%s)\n",
		cfg.ImageDir, res.Succeeded, res.Skipped, res.Failed, res.Elapsed.Round(time.Millisecond))
	return nil
}

// newScraper builds a crawler.Scraper from cfg.
func newScraper(cfg *config.Config, rec *metrics.Recorder, logger *slog.Logger) *crawler.Scraper {
	return crawler.NewScraper(httpClient(cfg),
		crawler.WithBaseURL(cfg.BaseURL),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithConcurrency(cfg.CrawlConcurrency),
		crawler.WithForce(cfg.Force),
		crawler.WithLogger(logger),
		crawler.WithRecorder(rec),
	)
}
