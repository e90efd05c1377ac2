package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder

	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/ocr"
)

// Info describes a page scan.
type Info struct {
	Path   string `json:"path"`
	MIME   string `json:"mime"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	// Orientation is the EXIF orientation tag, 1 to 8, or 0 when absent.
	Orientation int `json:"orientation,omitempty"`
}

// Rotated reports whether the EXIF orientation asks viewers to turn the image.
func (i Info) Rotated() bool {
	return i.Orientation > 1
}

// Inspect reads path and reports its type and dimensions. Files that are
// not decodable images still get a MIME type.
func Inspect(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("inspect %s: %w", path, err)
	}

	info := Info{
		Path: path,
		MIME: mimetype.Detect(data).String(),
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Format = format
		info.Width = cfg.Width
		info.Height = cfg.Height
	}

	info.Orientation = orientation(data)
	return info, nil
}

// orientation returns the EXIF orientation in data, or 0.
func orientation(data []byte) int {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return 0
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 0
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		switch v := entry.Value.(type) {
		case []uint16:
			if len(v) > 0 {
				return int(v[0])
			}
		case uint16:
			return int(v)
		}
		if n, err := strconv.Atoi(strings.Trim(entry.Formatted, "[] ")); err == nil {
			return n
		}
	}
	return 0
}

// ImagePath finds the scan a text page id was recognized from by swapping
// the .txt suffix for each known image extension.
func ImagePath(imageDir, pageID string) (string, error) {
	stem := strings.TrimSuffix(pageID, corpus.Extension)
	for _, ext := range ocr.ImageExtensions {
		candidate := filepath.Join(imageDir, stem+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNoImage, pageID, imageDir)
}
