package preview

import "errors"

var (
	// ErrUnsupportedPlatform is returned when no opener command is known for the OS.
	ErrUnsupportedPlatform = errors.New("opening files is not supported on this platform")

	// ErrNoImage is returned when no scan matches a page id.
	ErrNoImage = errors.New("no image for page")
)
