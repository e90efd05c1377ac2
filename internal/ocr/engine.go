package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kalkar/skewscan/internal/config"
)

// Engine recognizes the text of one page image.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// maxStderr bounds how much tesseract stderr is kept in an error.
const maxStderr = 512

// TesseractEngine runs the tesseract command line tool.
type TesseractEngine struct {
	path     string
	language string
	psm      int
	runner   Runner
}

// EngineOption configures a TesseractEngine.
type EngineOption func(*TesseractEngine)

// WithTesseractPath sets the tesseract executable.
func WithTesseractPath(path string) EngineOption {
	return func(e *TesseractEngine) {
		e.path = path
	}
}

// WithLanguage sets the tesseract language pack.
func WithLanguage(lang string) EngineOption {
	return func(e *TesseractEngine) {
		e.language = lang
	}
}

// WithPageSegMode sets --psm. Zero leaves tesseract's default.
func WithPageSegMode(psm int) EngineOption {
	return func(e *TesseractEngine) {
		e.psm = psm
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) EngineOption {
	return func(e *TesseractEngine) {
		e.runner = r
	}
}

// NewTesseractEngine creates an engine with the Danish language pack.
func NewTesseractEngine(opts ...EngineOption) *TesseractEngine {
	e := &TesseractEngine{
		path:     config.DefaultTesseractPath,
		language: config.DefaultOCRLanguage,
		runner:   ExecRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Args returns the tesseract arguments for imagePath. Interword spaces are
// preserved so column gaps stay visible in the text.
func (e *TesseractEngine) Args(imagePath string) []string {
	args := []string{
		imagePath, "stdout",
		"-l", e.language,
		"-c", "preserve_interword_spaces=1",
	}
	if e.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(e.psm))
	}
	return args
}

// Recognize implements Engine.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	stdout, stderr, err := e.runner.Run(ctx, e.path, e.Args(imagePath)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(string(stderr))
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		return "", fmt.Errorf("%w: %s: %w: %s", ErrRecognize, imagePath, err, msg)
	}
	return string(stdout), nil
}
