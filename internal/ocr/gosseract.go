//go:build gosseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes images through libtesseract. Each call uses
// its own client, so the engine is safe for concurrent use.
type GosseractEngine struct {
	language string
	psm      int
}

// NewGosseractEngine creates an engine for language. psm zero keeps the
// library default.
func NewGosseractEngine(language string, psm int) *GosseractEngine {
	return &GosseractEngine{language: language, psm: psm}
}

// Recognize implements Engine.
func (e *GosseractEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return "", fmt.Errorf("set variable: %w", err)
	}
	if e.psm > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.psm)); err != nil {
			return "", fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRecognize, imagePath, err)
	}
	return text, nil
}

// NewDefaultEngine returns the libtesseract engine. The executable path is
// unused in this build.
func NewDefaultEngine(_, language string, psm int) Engine {
	return NewGosseractEngine(language, psm)
}
