// Package analyzer implements the skew-detection heuristics.
//
// Given a corpus of per-page OCR text and a set of thresholds, Classify
// partitions page ids by the heuristic(s) that flagged them:
//
//   - LAST_LINE: the last line is shorter than Thresholds.LastLineLength and
//     the page is not in Thresholds.LastLineAllowlist
//   - TOO_FEW_COLUMNS: fewer than Thresholds.ColumnMarkers lines contain " | "
//   - TOO_MANY_EMPTY_LINES: more than Thresholds.EmptyLines lines are empty
//
// Every heuristic runs on every page; a page can be flagged for several
// reasons at once. The package performs no I/O, never mutates its inputs and
// does not validate thresholds.
//
// A page with no lines has no last line. It is flagged LAST_LINE (unless
// allowlisted): empty OCR output is the strongest sign of a bad scan.
package analyzer
