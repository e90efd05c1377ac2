//go:build !gosseract

package ocr

// NewDefaultEngine returns the engine used by the CLI: the tesseract
// executable at path.
func NewDefaultEngine(path, language string, psm int) Engine {
	return NewTesseractEngine(
		WithTesseractPath(path),
		WithLanguage(language),
		WithPageSegMode(psm),
	)
}
