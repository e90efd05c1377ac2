package parser

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kalkar/skewscan/internal/model"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for rejected lines and unusual pages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithSkip leaves the given page ids out, typically pages flagged as skewed.
func WithSkip(ids ...string) Option {
	return func(p *Parser) {
		for _, id := range ids {
			p.skip[id] = struct{}{}
		}
	}
}

// WithLimit parses only the first n pages in page order. Zero means all.
func WithLimit(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.limit = n
		}
	}
}

// Parser builds a dictionary from a corpus.
type Parser struct {
	logger *slog.Logger
	skip   map[string]struct{}
	limit  int
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		logger: slog.Default(),
		skip:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dictionary is the result of parsing a corpus.
type Dictionary struct {
	// Entries in page order, partials merged.
	Entries []Entry

	// Pages is the number of corpus pages parsed.
	Pages int

	// Skipped lists page ids left out by WithSkip.
	Skipped []string

	// Unresolved counts partial entries with nothing before them to merge into.
	Unresolved int
}

// Parse parses every page of corpus into one list of entries. Each partial
// entry is appended to the entry before it.
func (p *Parser) Parse(corpus model.Corpus) *Dictionary {
	dict := &Dictionary{}

	var pages []Page
	for _, id := range p.order(corpus) {
		if _, ok := p.skip[id]; ok {
			dict.Skipped = append(dict.Skipped, id)
			continue
		}
		if p.limit > 0 && dict.Pages == p.limit {
			break
		}
		page, _ := corpus.Page(id)
		pages = append(pages, p.Pages(page)...)
		dict.Pages++
	}

	for _, page := range pages {
		for _, e := range page.Entries() {
			if e.Status == StatusPartial && len(dict.Entries) > 0 {
				last := len(dict.Entries) - 1
				dict.Entries[last] = dict.Entries[last].combine(e)
				continue
			}
			if e.Status == StatusPartial {
				dict.Unresolved++
				p.logger.Debug("partial entry at start of dictionary", "page", e.Page, "headword", e.Headword)
			}
			dict.Entries = append(dict.Entries, e)
		}
	}
	return dict
}

// Pages prepares one corpus page for entry parsing. Known misreadings are
// corrected, lines above the header dropped and the columns folded. A page
// where one letter ends and the next begins becomes two pages.
func (p *Parser) Pages(page model.Page) []Page {
	lines := applyCorrections(page.ID, page.Lines)
	meta := MetaLineIndex(page.ID)
	if meta >= len(lines) {
		p.logger.Warn("page has no header line", "page", page.ID)
		return nil
	}
	lines = lines[meta:]

	if _, ok := SplitPoint(page.ID); ok {
		pages, err := p.split(page.ID, lines, meta)
		if err == nil {
			return pages
		}
		p.logger.Warn("parsing page whole", "page", page.ID, "error", err)
	}

	folded := NewPage(page.ID, p.fold(page.ID, lines), nil)
	folded.Letters = Letters(page.ID)
	if len(folded.Letters) == 0 {
		folded.Letters = folded.MetaLetters()
	}
	return []Page{folded}
}

// split cuts a two-letter page at its split point. Both halves keep the
// header and get one letter each.
func (p *Parser) split(name string, lines []string, offset int) ([]Page, error) {
	at, ok := SplitPoint(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSplitPage, name)
	}
	letters := Letters(name)
	if len(letters) != 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrSplitLetters, name, len(letters))
	}
	if seq, err := Sequential(letters[0], letters[1]); err == nil && !seq {
		p.logger.Debug("split letters are not adjacent", "page", name, "letters", letters)
	}

	at = min(max(at-offset, 1), len(lines))
	first := lines[:at]
	second := append([]string{lines[0]}, lines[at:]...)

	return []Page{
		NewPage(name, p.fold(name, first), letters[:1]),
		NewPage(name, p.fold(name, second), letters[1:]),
	}, nil
}

func (p *Parser) fold(name string, lines []string) []string {
	column, rejected := SplitColumns(lines)
	for _, line := range rejected {
		p.logger.Warn("dropping line with several dividers", "page", name, "line", line)
	}
	return column
}

// order returns the corpus ids by page index. Ids without an index sort
// after the rest by name.
func (p *Parser) order(corpus model.Corpus) []string {
	ids := corpus.IDs()
	slices.SortStableFunc(ids, func(a, b string) int {
		ia, oka := pageIndex(a)
		ib, okb := pageIndex(b)
		switch {
		case oka && okb:
			return cmp.Or(cmp.Compare(ia, ib), cmp.Compare(a, b))
		case oka:
			return -1
		case okb:
			return 1
		}
		return cmp.Compare(a, b)
	})
	return ids
}
