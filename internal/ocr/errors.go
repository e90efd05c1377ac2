package ocr

import "errors"

var (
	// ErrRecognize is returned when the OCR engine fails on an image.
	ErrRecognize = errors.New("ocr failed")

	// ErrNoImageDir is returned when the image directory cannot be listed.
	ErrNoImageDir = errors.New("cannot read image directory")
)
