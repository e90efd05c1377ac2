package parser

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status tells whether an entry starts with a headword.
type Status int

const (
	// StatusValid entries start with a headword.
	StatusValid Status = iota
	// StatusPartial entries continue the entry before them.
	StatusPartial
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusPartial {
		return "part-of-previous-entry"
	}
	return "valid"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is one dictionary entry.
type Entry struct {
	Headword    string `json:"headword"`
	Definitions string `json:"definitions"`
	Status      Status `json:"status"`

	// Page is the id of the page the entry starts on.
	Page string `json:"page,omitempty"`
}

// headwordTypos maps misread headwords to their printed form.
var headwordTypos = map[string]string{
	"Azelkøbstad": "Axelkøbstad",
	"Azelvej":     "Axelvej",
	"Sebbet":      "Sabbat",
	"Ya(eyfærdig": "Yd(e)færdig",
}

// headwordSplits fixes headwords the OCR ran into their definition.
var headwordSplits = map[string][2]string{
	"Abeganterino.narreverk.": {"Abeganteri", "no. narreverk. Moth."},
}

// bareHeadwords are headwords printed without a trailing comma.
var bareHeadwords = []string{"X"}

// ParseEntry parses the text of one entry. The first word is the headword
// and the rest the definitions. letters are the letters headwords on the
// page start with; an entry whose first word does not start with one of
// them, or does not end in a comma or a hyphen, is partial.
func ParseEntry(raw string, letters []string) Entry {
	raw = strings.TrimSpace(raw)
	headword, definitions := raw, ""
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		headword, definitions = raw[:i], raw[i:]
	}
	definitions = strings.Join(strings.Fields(definitions), " ")

	status := StatusValid
	if !isHeadword(headword, letters) {
		status = StatusPartial
	}

	// A hyphen means the headword was broken across lines.
	if stem, ok := strings.CutSuffix(headword, "-"); ok && definitions != "" {
		rest, tail, _ := strings.Cut(definitions, " ")
		headword, definitions = stem+rest, tail
	}

	if fix, ok := headwordSplits[headword]; ok {
		headword, definitions, status = fix[0], fix[1], StatusValid
	}

	return Entry{
		Headword:    presentHeadword(headword, letters),
		Definitions: definitions,
		Status:      status,
	}
}

func isHeadword(word string, letters []string) bool {
	if !startsWithAny(word, letters) {
		return false
	}
	return strings.HasSuffix(word, ",") ||
		strings.HasSuffix(word, "-") ||
		slices.Contains(bareHeadwords, word)
}

func startsWithAny(word string, letters []string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return r != utf8.RuneError && slices.Contains(letters, string(r))
}

// presentHeadword drops the trailing comma of a headword, restores its
// capitalization and fixes known typos.
func presentHeadword(headword string, letters []string) string {
	if !startsWithAny(headword, letters) {
		return headword
	}
	if stem, ok := strings.CutSuffix(headword, ","); ok {
		headword = capitalize(stem)
	}
	if fixed, ok := headwordTypos[headword]; ok {
		return fixed
	}
	return headword
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Danish).String(s[:size]) +
		cases.Lower(language.Danish).String(s[size:])
}

// combine appends a partial entry to e.
func (e Entry) combine(part Entry) Entry {
	e.Definitions = joinNonEmpty(e.Definitions, part.Headword, part.Definitions)
	return e
}

func joinNonEmpty(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(s string) bool { return s == "" }), " ")
}

var senseNumber = regexp.MustCompile(`(?:^|\s)(\d+)\)`)

// Senses splits numbered definitions "1) ... 2) ..." into separate senses,
// preceded by any text before the first number. Definitions that are not
// numbered 1, 2, 3 and so on are returned whole.
func (e Entry) Senses() []string {
	matches := senseNumber.FindAllStringSubmatchIndex(e.Definitions, -1)
	if len(matches) == 0 {
		return []string{e.Definitions}
	}

	starts := make([]int, len(matches))
	for i, m := range matches {
		n, err := strconv.Atoi(e.Definitions[m[2]:m[3]])
		if err != nil || n != i+1 {
			return []string{e.Definitions}
		}
		starts[i] = m[2]
	}

	var senses []string
	if head := strings.TrimSpace(e.Definitions[:starts[0]]); head != "" {
		senses = append(senses, head)
	}
	for i, start := range starts {
		end := len(e.Definitions)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		senses = append(senses, strings.TrimSpace(e.Definitions[start:end]))
	}
	return senses
}
