package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/kalkar/skewscan/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "skewscan"

	// DefaultCorpusDir is where OCR text files are read from and written to.
	DefaultCorpusDir = "txt"

	// DefaultImageDir is where downloaded page scans are stored.
	DefaultImageDir = "images"

	// DefaultReportMode prints flagged ids only.
	DefaultReportMode = "list"

	// DefaultBaseURL is the root of the Kalkar dictionary scans.
	DefaultBaseURL = "https://www.hist.uib.no/kalkar"

	// DefaultCrawlConcurrency bounds parallel image downloads.
	DefaultCrawlConcurrency = 4

	// DefaultCrawlDelay is the pause between letter index requests.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultTimeout applies to each HTTP request.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent identifies skewscan in HTTP requests.
	DefaultUserAgent = "skewscan/1.0 (+https://github.com/kalkar/skewscan)"

	// DefaultMaxBodySize limits a downloaded image to 20MB.
	DefaultMaxBodySize = 20 * 1024 * 1024

	// DefaultOCRWorkers is the number of tesseract processes run at once.
	DefaultOCRWorkers = 6

	// DefaultOCRBatchSize is how many images are handed to the pool per batch.
	DefaultOCRBatchSize = 30

	// DefaultOCRLanguage is the tesseract language pack for the dictionary.
	DefaultOCRLanguage = "dan"

	// DefaultTesseractPath is looked up in PATH.
	DefaultTesseractPath = "tesseract"

	// DatabaseFile is the run history file name inside DBDir.
	DatabaseFile = "skewscan.db"
)

// Config holds every option of a skewscan invocation. Commands read the
// fields they need and ignore the rest.
type Config struct {
	// CorpusDir is the directory of "<index>-<headword>.txt" OCR files.
	CorpusDir string

	// Thresholds are the heuristic limits passed to the analyzer.
	Thresholds model.Thresholds

	// Strict rejects negative thresholds instead of passing them through.
	Strict bool

	// Workers bounds classification goroutines. Zero means GOMAXPROCS.
	Workers int

	// ReportMode is "list" or "breakdown" for text output.
	ReportMode string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile redirects the report from stdout to a file.
	ReportFile string

	// Verbose enables debug logging.
	Verbose bool

	// LogFile, when set, also writes logs to a rotating file.
	LogFile string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit path to the YAML configuration file.
	ConfigFilePath string

	// DBDir is the directory holding the run history database.
	DBDir string

	// SaveToDB persists classification runs.
	SaveToDB bool

	// MetricsFile, when set, receives a Prometheus textfile after a run.
	MetricsFile string

	// BaseURL is the dictionary site root.
	BaseURL string

	// ImageDir is where scans are downloaded and read for OCR.
	ImageDir string

	// CrawlConcurrency bounds parallel downloads.
	CrawlConcurrency int

	// CrawlDelay is the politeness delay between index pages.
	CrawlDelay time.Duration

	// Timeout applies to each HTTP request.
	Timeout time.Duration

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodySize caps a single download in bytes.
	MaxBodySize int64

	// Force re-downloads and re-recognizes files that already exist.
	Force bool

	// OCRWorkers is the number of concurrent OCR processes.
	OCRWorkers int

	// OCRBatchSize is the number of images per batch.
	OCRBatchSize int

	// OCRLanguage is the tesseract language, e.g. "dan".
	OCRLanguage string

	// PageSegMode is tesseract's --psm value. Zero leaves tesseract's default.
	PageSegMode int

	// TesseractPath is the tesseract executable.
	TesseractPath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		CorpusDir:        DefaultCorpusDir,
		Thresholds:       model.DefaultThresholds(),
		ReportMode:       DefaultReportMode,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
		BaseURL:          DefaultBaseURL,
		ImageDir:         DefaultImageDir,
		CrawlConcurrency: DefaultCrawlConcurrency,
		CrawlDelay:       DefaultCrawlDelay,
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxBodySize:      DefaultMaxBodySize,
		OCRWorkers:       DefaultOCRWorkers,
		OCRBatchSize:     DefaultOCRBatchSize,
		OCRLanguage:      DefaultOCRLanguage,
		TesseractPath:    DefaultTesseractPath,
	}
}

// XDGDataDir returns the XDG data directory for skewscan.
// On Linux: ~/.local/share/skewscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for skewscan.
// On Linux: ~/.config/skewscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory, used for log files.
// On Linux: ~/.local/state/skewscan
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DatabasePath returns the run history file inside DBDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DBDir, DatabaseFile)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.CorpusDir == "" {
		return ErrNoCorpusDir
	}

	if c.Workers < 0 || c.OCRWorkers <= 0 || c.CrawlConcurrency <= 0 {
		return ErrInvalidWorkers
	}

	if c.OCRBatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ReportMode != "list" && c.ReportMode != "breakdown" {
		return ErrInvalidMode
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Strict {
		if err := c.Thresholds.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
		}
	}

	return nil
}

// ReportFormat returns the report.New format name selected by the options.
func (c *Config) ReportFormat() string {
	switch {
	case c.JSONReport:
		return "json"
	case c.MarkdownReport:
		return "markdown"
	default:
		return c.ReportMode
	}
}
