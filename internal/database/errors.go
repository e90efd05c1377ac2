package database

import "errors"

var (
	// ErrRunNotFound is returned when no stored run matches an id.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an id prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run id prefix is ambiguous")
)
