package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/database"
	"github.com/kalkar/skewscan/internal/log"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/model"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// binder copies one changed flag into cfg.
type binder func(cmd *cobra.Command, cfg *config.Config) error

func intFlag(name string, set func(*config.Config, int)) binder {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

func stringFlag(name string, set func(*config.Config, string)) binder {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

func boolFlag(name string, set func(*config.Config, bool)) binder {
	return func(cmd *cobra.Command, cfg *config.Config) error {
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return err
		}
		set(cfg, v)
		return nil
	}
}

// flagBindings maps flag names to Config fields. A flag only overrides the
// configuration file when it was set on the command line.
var flagBindings = map[string]binder{
	"verbose":  boolFlag("verbose", func(c *config.Config, v bool) { c.Verbose = v }),
	"log-file": stringFlag("log-file", func(c *config.Config, v string) { c.LogFile = v }),
	"log-json": boolFlag("log-json", func(c *config.Config, v bool) { c.LogJSON = v }),

	"dir":          stringFlag("dir", func(c *config.Config, v string) { c.CorpusDir = v }),
	"format":       stringFlag("format", func(c *config.Config, v string) { c.ReportMode = v }),
	"json":         boolFlag("json", func(c *config.Config, v bool) { c.JSONReport = v }),
	"markdown":     boolFlag("markdown", func(c *config.Config, v bool) { c.MarkdownReport = v }),
	"output":       stringFlag("output", func(c *config.Config, v string) { c.ReportFile = v }),
	"metrics-file": stringFlag("metrics-file", func(c *config.Config, v string) { c.MetricsFile = v }),
	"db-dir":       stringFlag("db-dir", func(c *config.Config, v string) { c.DBDir = v }),
	"no-save":      boolFlag("no-save", func(c *config.Config, v bool) { c.SaveToDB = !v }),

	"last-line":   intFlag("last-line", func(c *config.Config, v int) { c.Thresholds.LastLineLength = v }),
	"columns":     intFlag("columns", func(c *config.Config, v int) { c.Thresholds.ColumnMarkers = v }),
	"empty-lines": intFlag("empty-lines", func(c *config.Config, v int) { c.Thresholds.EmptyLines = v }),
	"workers":     intFlag("workers", func(c *config.Config, v int) { c.Workers = v }),
	"strict":      boolFlag("strict", func(c *config.Config, v bool) { c.Strict = v }),
	"allow": func(cmd *cobra.Command, cfg *config.Config) error {
		ids, err := cmd.Flags().GetStringSlice("allow")
		if err != nil {
			return err
		}
		cfg.Thresholds.LastLineAllowlist = cfg.Thresholds.LastLineAllowlist.With(ids...)
		return nil
	},

	"base-url":    stringFlag("base-url", func(c *config.Config, v string) { c.BaseURL = v }),
	"images":      stringFlag("images", func(c *config.Config, v string) { c.ImageDir = v }),
	"concurrency": intFlag("concurrency", func(c *config.Config, v int) { c.CrawlConcurrency = v }),
	"user-agent":  stringFlag("user-agent", func(c *config.Config, v string) { c.UserAgent = v }),
	"force":       boolFlag("force", func(c *config.Config, v bool) { c.Force = v }),
	"delay": func(cmd *cobra.Command, cfg *config.Config) error {
		d, err := cmd.Flags().GetDuration("delay")
		cfg.CrawlDelay = d
		return err
	},
	"timeout": func(cmd *cobra.Command, cfg *config.Config) error {
		d, err := cmd.Flags().GetDuration("timeout")
		cfg.Timeout = d
		return err
	},

	"ocr-workers": intFlag("ocr-workers", func(c *config.Config, v int) { c.OCRWorkers = v }),
	"batch":       intFlag("batch", func(c *config.Config, v int) { c.OCRBatchSize = v }),
	"lang":        stringFlag("lang", func(c *config.Config, v string) { c.OCRLanguage = v }),
	"psm":         intFlag("psm", func(c *config.Config, v int) { c.PageSegMode = v }),
	"tesseract":   stringFlag("tesseract", func(c *config.Config, v string) { c.TesseractPath = v }),
}

// loadConfig builds the effective configuration: defaults, then the
// configuration file, then flags set on the command line. overrides add
// or replace entries of flagBindings for this command.
func loadConfig(cmd *cobra.Command, overrides map[string]binder) (*config.Config, error) {
	cfg := config.NewConfig()

	explicit, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicit

	if path := config.FindConfigFile(explicit); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicit)
	}

	bindings := make(map[string]binder, len(flagBindings)+len(overrides))
	maps.Copy(bindings, flagBindings)
	maps.Copy(bindings, overrides)

	for name, bind := range bindings {
		if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
			continue
		}
		if err := bind(cmd, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// newLogger builds the command logger from cfg.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return log.NewLogger(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
		File:    cfg.LogFile,
	})
}

// reportOutput returns where the report goes: cfg.ReportFile or the
// command's stdout.
func reportOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, io.Closer, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), nopCloser{}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

// openStore opens the run history database in cfg.DBDir.
func openStore(cfg *config.Config) (*database.RunDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// writeMetrics exports rec when a metrics file is configured. Failures are
// logged only.
func writeMetrics(cfg *config.Config, rec *metrics.Recorder, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics", "file", cfg.MetricsFile, "error", err)
		return
	}
	logger.Debug("metrics written", "file", cfg.MetricsFile)
}

// httpClient returns the client used by the crawler.
func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// closeQuietly closes c and logs a failure.
func closeQuietly(c io.Closer, logger *slog.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Warn("close failed", "error", err)
	}
}

// addReportFlags registers the report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", config.DefaultReportMode,
		"Text report layout: list or breakdown")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// addClassifyFlags registers threshold, history and metrics flags.
func addClassifyFlags(cmd *cobra.Command) {
	addReportFlags(cmd)

	cmd.Flags().Int("last-line", model.DefaultLastLineLength, "Minimum last line length in characters")
	cmd.Flags().Int("columns", model.DefaultColumnMarkers, `Minimum number of lines containing " | "`)
	cmd.Flags().Int("empty-lines", model.DefaultEmptyLines, "Maximum number of empty lines")
	cmd.Flags().StringSlice("allow", nil, "Page id exempt from the last-line check (repeatable)")
	cmd.Flags().IntP("workers", "w", 0, "Classification goroutines (default GOMAXPROCS)")
	cmd.Flags().Bool("strict", false, "Reject negative thresholds")

	cmd.Flags().Bool("no-save", false, "Do not record the run in the history database")
	cmd.Flags().String("db-dir", "", "Run history directory (default: XDG data directory)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
}

// addCrawlFlags registers the download flags.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", config.DefaultBaseURL, "Dictionary site root")
	cmd.Flags().String("images", config.DefaultImageDir, "Directory for page scans")
	cmd.Flags().Int("concurrency", config.DefaultCrawlConcurrency, "Parallel downloads")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Pause between letter pages")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")
}

// addOCRFlags registers the recognition flags. workersFlag names the
// worker count flag, which differs between ocr and run.
func addOCRFlags(cmd *cobra.Command, workersFlag string) {
	cmd.Flags().Int(workersFlag, config.DefaultOCRWorkers, "Concurrent tesseract processes")
	cmd.Flags().Int("batch", config.DefaultOCRBatchSize, "Images per batch")
	cmd.Flags().String("lang", config.DefaultOCRLanguage, "Tesseract language")
	cmd.Flags().Int("psm", 0, "Tesseract page segmentation mode (0 keeps the default)")
	cmd.Flags().String("tesseract", config.DefaultTesseractPath, "Tesseract executable")
}
