package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/kalkar/skewscan/internal/model"
)

// ColumnMarker separates the two typeset columns of a dictionary page in OCR output.
const ColumnMarker = " | "

// predicate decides whether a page should be flagged for one reason.
type predicate func(page model.Page, t model.Thresholds) bool

// predicates binds every reason to its heuristic. Evaluate walks all of them,
// so adding a reason means adding an entry here.
var predicates = []struct {
	reason model.SkewReason
	check  predicate
}{
	{model.ReasonLastLine, lastLineTooShort},
	{model.ReasonTooFewColumns, tooFewColumns},
	{model.ReasonTooManyEmptyLines, tooManyEmptyLines},
}

// lastLineTooShort flags a short final line. Length counts characters, not
// bytes, so Danish letters such as æ count once.
func lastLineTooShort(page model.Page, t model.Thresholds) bool {
	if t.LastLineAllowlist.Contains(page.ID) {
		return false
	}
	last, ok := page.LastLine()
	if !ok {
		return true
	}
	return utf8.RuneCountInString(last) < t.LastLineLength
}

// tooFewColumns flags pages with fewer column-marker lines than the threshold.
func tooFewColumns(page model.Page, t model.Thresholds) bool {
	return CountColumnMarkerLines(page.Lines) < t.ColumnMarkers
}

// tooManyEmptyLines flags pages with more blank lines than the threshold.
func tooManyEmptyLines(page model.Page, t model.Thresholds) bool {
	return CountEmptyLines(page.Lines) > t.EmptyLines
}

// CountColumnMarkerLines returns how many lines contain ColumnMarker.
func CountColumnMarkerLines(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.Contains(line, ColumnMarker) {
			n++
		}
	}
	return n
}

// CountEmptyLines returns how many lines are exactly the empty string.
// Whitespace-only lines are not empty.
func CountEmptyLines(lines []string) int {
	n := 0
	for _, line := range lines {
		if line == "" {
			n++
		}
	}
	return n
}
