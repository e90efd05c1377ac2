package ocr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/pipeline"
)

// ImageExtensions lists the file suffixes a Converter picks up.
var ImageExtensions = []string{".gif", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"}

// Recorder counts recognition outcomes.
type Recorder interface {
	IncOCR(result string)
}

// Converter runs an Engine over a directory of page images.
type Converter struct {
	engine    Engine
	workers   int
	batchSize int
	force     bool
	logger    *slog.Logger
	recorder  Recorder
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithWorkers sets how many images are recognized at once.
func WithWorkers(n int) ConverterOption {
	return func(c *Converter) {
		c.workers = n
	}
}

// WithBatchSize sets how many images form one batch.
func WithBatchSize(n int) ConverterOption {
	return func(c *Converter) {
		c.batchSize = n
	}
}

// WithForce re-runs OCR for images that already have a text file.
func WithForce(force bool) ConverterOption {
	return func(c *Converter) {
		c.force = force
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithRecorder counts every image outcome on r.
func WithRecorder(r Recorder) ConverterOption {
	return func(c *Converter) {
		c.recorder = r
	}
}

// NewConverter creates a Converter around engine.
func NewConverter(engine Engine, opts ...ConverterOption) *Converter {
	c := &Converter{
		engine:    engine,
		workers:   config.DefaultOCRWorkers,
		batchSize: config.DefaultOCRBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TextName maps an image file name to its corpus page id.
func TextName(imageName string) string {
	return strings.TrimSuffix(imageName, filepath.Ext(imageName)) + corpus.Extension
}

// ListImages returns the image files directly inside dir, sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImageDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ConvertDir recognizes every image in inDir and writes the text to outDir.
// Per-image failures are logged and counted; only a missing inDir or
// cancellation is returned as an error.
func (c *Converter) ConvertDir(ctx context.Context, inDir, outDir string) (pipeline.BatchResult, error) {
	images, err := ListImages(inDir)
	if err != nil {
		return pipeline.BatchResult{}, err
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return pipeline.BatchResult{}, fmt.Errorf("create text directory: %w", err)
	}

	bp := pipeline.NewBatchProcessor(
		pipeline.WithConcurrency[string](c.workers),
		pipeline.WithBatchSize[string](c.batchSize),
		pipeline.WithBatchLogger[string](c.logger),
		pipeline.WithItemName(func(name string) string { return name }),
		pipeline.WithItemCallback(func(_ string, err error) { c.record(err) }),
	)

	return bp.Process(ctx, images, func(ctx context.Context, name string) error {
		return c.convert(ctx, filepath.Join(inDir, name), filepath.Join(outDir, TextName(name)))
	})
}

func (c *Converter) convert(ctx context.Context, imagePath, textPath string) error {
	if !c.force {
		if _, err := os.Stat(textPath); err == nil {
			return fmt.Errorf("%s exists: %w", textPath, pipeline.ErrSkipped)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	text, err := c.engine.Recognize(ctx, imagePath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(textPath, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", textPath, err)
	}
	c.logger.Debug("page recognized", "image", imagePath, "text", textPath)
	return nil
}

func (c *Converter) record(err error) {
	if c.recorder == nil {
		return
	}
	switch {
	case err == nil:
		c.recorder.IncOCR(metrics.ResultSuccess)
	case errors.Is(err, pipeline.ErrSkipped):
		c.recorder.IncOCR(metrics.ResultSkipped)
	default:
		c.recorder.IncOCR(metrics.ResultFailure)
	}
}
