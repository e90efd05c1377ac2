package config

import (
	"time"

	"github.com/kalkar/skewscan/internal/model"
)

// ThresholdsFile is the "thresholds:" section of the configuration file.
// Absent keys keep the compiled-in defaults.
type ThresholdsFile struct {
	LastLineLength *int `yaml:"lastLineLength,omitempty"`
	ColumnMarkers  *int `yaml:"columnMarkers,omitempty"`
	EmptyLines     *int `yaml:"emptyLines,omitempty"`

	// LastLineAllowlist replaces the default allowlist when present.
	LastLineAllowlist []string `yaml:"lastLineAllowlist,omitempty"`
}

// CrawlFile is the "crawl:" section of the configuration file.
type CrawlFile struct {
	BaseURL     string        `yaml:"baseURL,omitempty"`
	ImageDir    string        `yaml:"imageDir,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
}

// OCRFile is the "ocr:" section of the configuration file.
type OCRFile struct {
	Workers     int    `yaml:"workers,omitempty"`
	BatchSize   int    `yaml:"batchSize,omitempty"`
	Language    string `yaml:"language,omitempty"`
	PageSegMode int    `yaml:"pageSegMode,omitempty"`
	Tesseract   string `yaml:"tesseract,omitempty"`
}

// File represents the structure of the .skewscan configuration file.
type File struct {
	// Corpus is the default corpus directory.
	Corpus string `yaml:"corpus,omitempty"`

	// Database is the run history directory.
	Database string `yaml:"database,omitempty"`

	Thresholds ThresholdsFile `yaml:"thresholds,omitempty"`
	Crawl      CrawlFile      `yaml:"crawl,omitempty"`
	OCR        OCRFile        `yaml:"ocr,omitempty"`
}

// Apply overlays the values present in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Corpus != "" {
		cfg.CorpusDir = f.Corpus
	}
	if f.Database != "" {
		cfg.DBDir = f.Database
	}

	cfg.Thresholds = f.Thresholds.apply(cfg.Thresholds)

	if f.Crawl.BaseURL != "" {
		cfg.BaseURL = f.Crawl.BaseURL
	}
	if f.Crawl.ImageDir != "" {
		cfg.ImageDir = f.Crawl.ImageDir
	}
	if f.Crawl.Concurrency != 0 {
		cfg.CrawlConcurrency = f.Crawl.Concurrency
	}
	if f.Crawl.Delay != 0 {
		cfg.CrawlDelay = f.Crawl.Delay
	}
	if f.Crawl.Timeout != 0 {
		cfg.Timeout = f.Crawl.Timeout
	}
	if f.Crawl.UserAgent != "" {
		cfg.UserAgent = f.Crawl.UserAgent
	}

	if f.OCR.Workers != 0 {
		cfg.OCRWorkers = f.OCR.Workers
	}
	if f.OCR.BatchSize != 0 {
		cfg.OCRBatchSize = f.OCR.BatchSize
	}
	if f.OCR.Language != "" {
		cfg.OCRLanguage = f.OCR.Language
	}
	if f.OCR.PageSegMode != 0 {
		cfg.PageSegMode = f.OCR.PageSegMode
	}
	if f.OCR.Tesseract != "" {
		cfg.TesseractPath = f.OCR.Tesseract
	}
}

func (t ThresholdsFile) apply(base model.Thresholds) model.Thresholds {
	if t.LastLineLength != nil {
		base.LastLineLength = *t.LastLineLength
	}
	if t.ColumnMarkers != nil {
		base.ColumnMarkers = *t.ColumnMarkers
	}
	if t.EmptyLines != nil {
		base.EmptyLines = *t.EmptyLines
	}
	if t.LastLineAllowlist != nil {
		base.LastLineAllowlist = model.NewAllowlist(t.LastLineAllowlist...)
	}
	return base
}
