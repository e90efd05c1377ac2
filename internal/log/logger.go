package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// Verbose sets the level to Debug; otherwise only warnings and errors
	// are logged.
	Verbose bool

	// JSON switches the terminal output from text to JSON.
	JSON bool

	// File, when set, also writes JSON logs to this path with rotation.
	File string

	// MaxSizeMB is the size at which the log file is rotated. Default 10.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Default 3.
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept. Zero keeps them forever.
	MaxAgeDays int

	// Compress gzips rotated files.
	Compress bool

	// MaxAttrLen bounds string attribute length. Zero uses DefaultMaxAttrLen.
	MaxAttrLen int
}

// Level returns the slog level implied by Verbose.
func (o Options) Level() slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a logger writing to w and, when opts.File is set, to a
// rotating file. The returned Closer releases the file and must be called
// when the logger is no longer used.
func NewLogger(w io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level()}

	var terminal slog.Handler
	if opts.JSON {
		terminal = slog.NewJSONHandler(w, handlerOpts)
	} else {
		terminal = slog.NewTextHandler(w, handlerOpts)
	}

	if opts.File == "" {
		return slog.New(NewTrimHandler(terminal, opts.MaxAttrLen)), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	handler := newMultiHandler(terminal, slog.NewJSONHandler(file, handlerOpts))
	return slog.New(NewTrimHandler(handler, opts.MaxAttrLen)), file, nil
}

// NewTextLogger is NewLogger for a plain text terminal logger.
func NewTextLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _, _ := NewLogger(w, Options{Verbose: verbose})
	return logger
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
