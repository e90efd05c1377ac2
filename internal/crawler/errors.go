package crawler

import "errors"

var (
	// ErrUnexpectedStatus is returned when the site answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotImage is returned when a downloaded payload is not an image.
	ErrNotImage = errors.New("response is not an image")

	// ErrInvalidBaseURL is returned when the site base URL cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)
