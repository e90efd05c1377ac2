package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/kalkar/skewscan/internal/model"
)

// JSONWriter outputs runs in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document JSONWriter emits.
type JSONReport struct {
	RunID      string                        `json:"run_id,omitempty"`
	StartedAt  *time.Time                    `json:"started_at,omitempty"`
	Corpus     string                        `json:"corpus"`
	Digest     string                        `json:"corpus_digest,omitempty"`
	TotalPages int                           `json:"total_pages"`
	Flagged    int                           `json:"flagged_pages"`
	Thresholds model.Thresholds              `json:"thresholds"`
	Reasons    map[model.SkewReason][]string `json:"reasons"`
	Pages      []model.PageRecord            `json:"pages"`
}

// NewJSONReport builds the JSON document for run.
func NewJSONReport(run *model.Run) *JSONReport {
	result := resultOf(run)
	doc := &JSONReport{
		Flagged: result.Total(),
		Reasons: result.Sets(),
		Pages:   result.Records(),
	}
	if run != nil {
		doc.RunID = run.ID
		doc.Corpus = run.CorpusDir
		doc.Digest = run.CorpusDigest
		doc.TotalPages = run.CorpusSize
		doc.Thresholds = run.Thresholds
		if !run.StartedAt.IsZero() {
			started := run.StartedAt
			doc.StartedAt = &started
		}
	}
	return doc
}

// Write outputs run as a JSONReport.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.writeJSON(NewJSONReport(run))
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
