package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoCorpusDir is returned when the corpus directory is empty.
	ErrNoCorpusDir = errors.New("no corpus directory specified")

	// ErrInvalidWorkers is returned when a worker or concurrency count is out of range.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidBatchSize is returned when the OCR batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMode is returned for a text report mode other than list or breakdown.
	ErrInvalidMode = errors.New("invalid report mode: must be list or breakdown")

	// ErrInvalidThreshold is returned in strict mode for a negative threshold.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidTimeout is returned when the HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
