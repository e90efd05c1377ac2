package model

import (
	"fmt"
	"strings"
)

// SkewReason identifies which heuristic flagged a page.
// It says why a page looks skewed, not how badly.
type SkewReason int

const (
	// ReasonLastLine flags pages whose final OCR line is suspiciously short.
	// Line-by-line extraction of a rotated scan tends to leave a garbled
	// fragment as the last line.
	ReasonLastLine SkewReason = iota

	// ReasonTooFewColumns flags pages with too few column separators.
	// Well aligned two-column pages produce a fairly stable number of " | "
	// markers; skew breaks column detection and the count drops.
	ReasonTooFewColumns

	// ReasonTooManyEmptyLines flags pages with an excess of blank lines,
	// which OCR emits when it cannot find line boundaries.
	ReasonTooManyEmptyLines
)

// reasonNames holds the wire names in declaration order.
var reasonNames = [...]string{
	ReasonLastLine:          "LAST_LINE",
	ReasonTooFewColumns:     "TOO_FEW_COLUMNS",
	ReasonTooManyEmptyLines: "TOO_MANY_EMPTY_LINES",
}

// AllSkewReasons returns every reason in declaration order.
// Reports iterate this slice so that every reason is always present.
func AllSkewReasons() []SkewReason {
	return []SkewReason{ReasonLastLine, ReasonTooFewColumns, ReasonTooManyEmptyLines}
}

// String returns the upper-case name of the reason.
func (r SkewReason) String() string {
	if r.Valid() {
		return reasonNames[r]
	}
	return "UNKNOWN"
}

// Valid reports whether r is one of the enumerated reasons.
func (r SkewReason) Valid() bool {
	return r >= ReasonLastLine && r <= ReasonTooManyEmptyLines
}

// Description returns a short human-readable explanation of the reason.
func (r SkewReason) Description() string {
	switch r {
	case ReasonLastLine:
		return "last line is shorter than the threshold"
	case ReasonTooFewColumns:
		return "too few column separators"
	case ReasonTooManyEmptyLines:
		return "too many empty lines"
	default:
		return "unknown reason"
	}
}

// ParseSkewReason converts a name such as "LAST_LINE" (case-insensitive,
// '-' accepted for '_') into a SkewReason.
func ParseSkewReason(s string) (SkewReason, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range reasonNames {
		if n == name {
			return SkewReason(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownReason, s)
}

// MarshalText implements encoding.TextMarshaler so reasons can be used as
// JSON object keys and YAML values.
func (r SkewReason) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReason, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *SkewReason) UnmarshalText(text []byte) error {
	parsed, err := ParseSkewReason(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
