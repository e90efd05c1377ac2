package parser

import (
	"regexp"
	"strings"
)

const (
	divider        = "|"
	misreadDivider = " ! "
)

// gap finds a column break the OCR dropped the divider from.
var gap = regexp.MustCompile(`\S {5,}\S`)

// SplitColumns folds a two-column page into one column. The first line is
// the page header and is kept first, followed by the left column and then
// the right column. Lines that split into more than two parts cannot be
// assigned to a column and are returned as rejected.
func SplitColumns(lines []string) (column, rejected []string) {
	if len(lines) == 0 {
		return nil, nil
	}

	var left, right []string
	for _, line := range lines[1:] {
		parts := splitLine(line)
		switch len(parts) {
		case 1:
			left = append(left, parts[0])
		case 2:
			left = append(left, parts[0])
			right = append(right, parts[1])
		default:
			rejected = append(rejected, line)
		}
	}

	column = make([]string, 0, 1+len(left)+len(right))
	column = append(column, lines[0])
	column = append(column, left...)
	column = append(column, right...)
	return column, rejected
}

// splitLine splits one line at its divider. A line without one belongs to
// the left column and is returned alone. It returns nil when the line has
// more than one divider.
func splitLine(line string) []string {
	switch strings.Count(line, divider) {
	case 0:
	case 1:
		l, r, _ := strings.Cut(line, divider)
		return []string{l, r}
	default:
		return nil
	}

	if strings.Count(line, misreadDivider) == 1 {
		l, r, _ := strings.Cut(line, misreadDivider)
		return []string{l, r}
	}

	if loc := gap.FindStringIndex(line); loc != nil {
		return []string{line[:loc[0]+1], line[loc[0]+1:]}
	}

	return []string{line}
}
