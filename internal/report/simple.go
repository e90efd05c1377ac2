package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kalkar/skewscan/internal/model"
)

// Mode selects the layout of a SimpleWriter.
type Mode int

const (
	// ModeList prints every flagged page id once, sorted, one per line.
	// The output is meant to be piped into other tools.
	ModeList Mode = iota

	// ModeBreakdown prints a header and, for each reason, its count and ids.
	ModeBreakdown
)

// SimpleWriter outputs plain text.
type SimpleWriter struct {
	baseWriter

	mode Mode

	// verbose adds reason descriptions to the breakdown.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMode selects list or breakdown output.
func WithMode(mode Mode) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.mode = mode
	}
}

// WithVerbose enables reason descriptions in breakdown output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
// The default mode is ModeList.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		mode:       ModeList,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders run in the configured mode.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	result := resultOf(run)
	if w.mode == ModeBreakdown {
		w.writeHeader(&sb, run, result)
		w.writeReasons(&sb, result)
		w.writeFooter(&sb)
	} else {
		for _, id := range result.Flagged() {
			sb.WriteString(id)
			sb.WriteString("\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the run summary.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run, result *model.ClassificationResult) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SKEWSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if run != nil {
		if run.CorpusDir != "" {
			sb.WriteString(fmt.Sprintf("Corpus:        %s\n", run.CorpusDir))
		}
		if run.ID != "" {
			sb.WriteString(fmt.Sprintf("Run:           %s\n", run.ID))
		}
		if !run.StartedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("Date:          %s\n", run.StartedAt.Format("2006-01-02 15:04:05 MST")))
		}
		sb.WriteString(fmt.Sprintf("Pages:         %d\n", run.CorpusSize))
	}
	sb.WriteString(fmt.Sprintf("Flagged pages: %d\n", result.Total()))
	sb.WriteString("\n")
}

// writeReasons writes one section per reason in declaration order. Reasons
// with nothing flagged are still listed with a zero count.
func (w *SimpleWriter) writeReasons(sb *strings.Builder, result *model.ClassificationResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, reason := range model.AllSkewReasons() {
		ids := result.IDs(reason)
		sb.WriteString(fmt.Sprintf("%s (%d)\n", reason, len(ids)))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("  # %s\n", reason.Description()))
		}
		for _, id := range ids {
			sb.WriteString("  ")
			sb.WriteString(id)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
