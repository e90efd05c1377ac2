package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/markdown"
)

type jsonEntry struct {
	Headword    string   `json:"headword"`
	Definitions string   `json:"definitions"`
	Senses      []string `json:"senses,omitempty"`
	Page        string   `json:"page,omitempty"`
}

// WriteJSON writes entries as an indented JSON array. Numbered
// definitions are also listed as senses.
func WriteJSON(w io.Writer, entries []Entry) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		je := jsonEntry{Headword: e.Headword, Definitions: e.Definitions, Page: e.Page}
		if senses := e.Senses(); len(senses) > 1 {
			je.Senses = senses
		}
		out = append(out, je)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode dictionary: %w", err)
	}
	return nil
}

// WriteMarkdown writes entries as a Markdown glossary with one section per
// starting letter.
func WriteMarkdown(w io.Writer, entries []Entry) error {
	md := markdown.NewMarkdown(w)
	md.H1("Kalkar Dictionary")
	md.PlainText("")
	md.PlainText(strconv.Itoa(len(entries)) + " entries.")
	md.PlainText("")

	section := ""
	for _, e := range entries {
		if letter := initial(e.Headword); letter != section {
			section = letter
			md.H2(section)
			md.PlainText("")
		}

		senses := e.Senses()
		if len(senses) == 1 {
			md.PlainText(markdown.Bold(e.Headword) + " " + senses[0])
			md.PlainText("")
			continue
		}
		md.PlainText(markdown.Bold(e.Headword))
		md.PlainText("")
		md.BulletList(senses...)
		md.PlainText("")
	}

	return md.Build()
}

func initial(headword string) string {
	r, _ := utf8.DecodeRuneInString(headword)
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
