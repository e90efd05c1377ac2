package model

import "errors"

var (
	// ErrUnknownReason is returned when a name or value does not match any SkewReason.
	ErrUnknownReason = errors.New("unknown skew reason")

	// ErrNegativeThreshold is returned by Thresholds.Validate for negative limits.
	ErrNegativeThreshold = errors.New("threshold must not be negative")
)
