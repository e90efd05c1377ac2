package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Side is the side of the spread a page was printed on.
type Side int

const (
	// LeftSide pages start their header with the page number.
	LeftSide Side = iota
	// RightSide pages end their header with the page number.
	RightSide
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == LeftSide {
		return "left"
	}
	return "right"
}

// entryDash ends every entry.
const entryDash = "—"

// Page is a dictionary page folded into a single column.
type Page struct {
	// Name is the page id.
	Name string

	// Meta is the header line: page number and the first and last
	// headwords of the page.
	Meta string

	// Body is the page text after the header, left column first.
	Body []string

	// Letters are the letters headwords on the page start with.
	Letters []string
}

// NewPage builds a Page from a single-column page as returned by
// SplitColumns.
func NewPage(name string, column []string, letters []string) Page {
	p := Page{Name: name, Letters: letters}
	if len(column) > 0 {
		p.Meta = column[0]
		p.Body = column[1:]
	}
	return p
}

// Side reports which side of the spread the page is on.
func (p Page) Side() Side {
	fields := strings.Fields(p.Meta)
	if len(fields) > 0 && isNumber(fields[0]) {
		return LeftSide
	}
	return RightSide
}

// MetaLetters returns the first letters of the two headwords in the
// header, upper-cased and sorted.
func (p Page) MetaLetters() []string {
	fields := strings.Fields(p.Meta)
	if p.Side() == LeftSide && len(fields) > 0 {
		fields = fields[1:]
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}

	var letters []string
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		letters = append(letters, string(unicode.ToUpper(r)))
	}
	return sortLetters(letters)
}

// Entries cuts the page body into entries. The first entry is usually the
// end of an entry from the previous page and then comes back partial.
func (p Page) Entries() []Entry {
	text := strings.Join(p.Body, " ")

	var entries []Entry
	for _, raw := range splitEntries(text, p.Letters) {
		e := ParseEntry(raw, p.Letters)
		e.Page = p.Name
		entries = append(entries, e)
	}
	return entries
}

// splitEntries cuts text after every dash that is followed by whitespace
// and a headword letter. The dash stays with the entry it ends.
func splitEntries(text string, letters []string) []string {
	var raws []string
	start, from := 0, 0
	for {
		i := strings.Index(text[from:], entryDash)
		if i < 0 {
			break
		}
		end := from + i + len(entryDash)
		from = end

		rest := strings.TrimLeftFunc(text[end:], unicode.IsSpace)
		if len(rest) == len(text[end:]) || !startsWithAny(rest, letters) {
			continue
		}
		raws = appendRaw(raws, text[start:end])
		start = len(text) - len(rest)
		from = start
	}
	return appendRaw(raws, text[start:])
}

func appendRaw(raws []string, raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return raws
	}
	return append(raws, raw)
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
