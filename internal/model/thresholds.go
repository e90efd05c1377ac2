package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Default heuristic limits. They were tuned by hand against the Kalkar
// dictionary scans and are meant to be overridden through configuration.
const (
	// DefaultLastLineLength flags pages whose last line has fewer characters.
	DefaultLastLineLength = 10

	// DefaultColumnMarkers flags pages with fewer " | " lines.
	DefaultColumnMarkers = 30

	// DefaultEmptyLines flags pages with more empty lines.
	DefaultEmptyLines = 20
)

// DefaultLastLineAllowlist lists pages confirmed to legitimately end with a
// short line.
var DefaultLastLineAllowlist = []string{
	"0-abbot.txt",
}

// Allowlist is an immutable set of page ids. The zero value is empty.
type Allowlist struct {
	ids map[string]struct{}
}

// NewAllowlist builds an Allowlist from ids. Duplicates collapse.
func NewAllowlist(ids ...string) Allowlist {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Allowlist{ids: set}
}

// Contains reports whether id is allowlisted.
func (a Allowlist) Contains(id string) bool {
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of allowlisted ids.
func (a Allowlist) Len() int {
	return len(a.ids)
}

// IDs returns the allowlisted ids sorted.
func (a Allowlist) IDs() []string {
	ids := make([]string, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// With returns a new Allowlist holding a's ids plus ids.
func (a Allowlist) With(ids ...string) Allowlist {
	return NewAllowlist(append(a.IDs(), ids...)...)
}

// MarshalJSON encodes the allowlist as a sorted array.
func (a Allowlist) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.IDs())
}

// UnmarshalJSON decodes an array of ids.
func (a *Allowlist) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*a = NewAllowlist(ids...)
	return nil
}

// Thresholds holds the tunable limits of the skew heuristics.
// It is passed by value into the analyzer; nothing in skewscan keeps
// thresholds in package-level state.
type Thresholds struct {
	// LastLineLength: a last line with fewer characters flags LAST_LINE.
	LastLineLength int `json:"last_line_length"`

	// ColumnMarkers: fewer lines containing " | " flags TOO_FEW_COLUMNS.
	ColumnMarkers int `json:"column_markers"`

	// EmptyLines: more empty lines than this flags TOO_MANY_EMPTY_LINES.
	EmptyLines int `json:"empty_lines"`

	// LastLineAllowlist exempts page ids from the LAST_LINE heuristic.
	LastLineAllowlist Allowlist `json:"last_line_allowlist"`
}

// DefaultThresholds returns the compiled-in thresholds and allowlist.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LastLineLength:    DefaultLastLineLength,
		ColumnMarkers:     DefaultColumnMarkers,
		EmptyLines:        DefaultEmptyLines,
		LastLineAllowlist: NewAllowlist(DefaultLastLineAllowlist...),
	}
}

// Validate rejects negative limits. The analyzer itself never calls it and
// accepts any value; callers that want stricter guarantees opt in here.
func (t Thresholds) Validate() error {
	switch {
	case t.LastLineLength < 0:
		return fmt.Errorf("last line length %d: %w", t.LastLineLength, ErrNegativeThreshold)
	case t.ColumnMarkers < 0:
		return fmt.Errorf("column markers %d: %w", t.ColumnMarkers, ErrNegativeThreshold)
	case t.EmptyLines < 0:
		return fmt.Errorf("empty lines %d: %w", t.EmptyLines, ErrNegativeThreshold)
	}
	return nil
}
