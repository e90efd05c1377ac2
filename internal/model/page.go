package model

import (
	"slices"
	"sort"
)

// Page is the OCR text of one scanned dictionary page.
// ID is the text file name, conventionally "<index>-<headword>.txt".
// Lines keep the original order and may be empty.
type Page struct {
	// ID uniquely identifies the page inside its corpus.
	ID string `json:"id"`

	// Lines is the OCR transcription split on newline boundaries.
	Lines []string `json:"lines"`
}

// LastLine returns the final line of the page.
// The boolean is false when the page has no lines at all.
func (p Page) LastLine() (string, bool) {
	if len(p.Lines) == 0 {
		return "", false
	}
	return p.Lines[len(p.Lines)-1], true
}

// Corpus is an immutable mapping from page id to that page's lines.
// It is built once per run by the corpus reader and only read afterwards.
// The zero value is an empty corpus.
type Corpus struct {
	pages map[string][]string
}

// NewCorpus builds a Corpus from pages. The map and every line slice are
// copied, so later changes to the argument do not leak into the corpus.
func NewCorpus(pages map[string][]string) Corpus {
	copied := make(map[string][]string, len(pages))
	for id, lines := range pages {
		copied[id] = slices.Clone(lines)
	}
	return Corpus{pages: copied}
}

// Len returns the number of pages.
func (c Corpus) Len() int {
	return len(c.pages)
}

// IDs returns all page ids sorted lexicographically.
func (c Corpus) IDs() []string {
	ids := make([]string, 0, len(c.pages))
	for id := range c.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Page returns the page with the given id.
// The returned Lines must be treated as read-only.
func (c Corpus) Page(id string) (Page, bool) {
	lines, ok := c.pages[id]
	if !ok {
		return Page{}, false
	}
	return Page{ID: id, Lines: lines}, true
}

// Pages returns every page ordered by id.
// The returned Lines must be treated as read-only.
func (c Corpus) Pages() []Page {
	ids := c.IDs()
	pages := make([]Page, len(ids))
	for i, id := range ids {
		pages[i] = Page{ID: id, Lines: c.pages[id]}
	}
	return pages
}
