package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kalkar/skewscan/internal/model"
)

// Format names accepted by New.
const (
	FormatList      = "list"
	FormatBreakdown = "breakdown"
	FormatJSON      = "json"
	FormatMarkdown  = "markdown"
)

// Writer renders a classification run.
type Writer interface {
	// Write renders run and returns the number of bytes written.
	Write(run *model.Run) (int, error)
}

// New returns the writer registered for format.
func New(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatList, "":
		return NewSimpleWriter(output, WithMode(ModeList)), nil
	case FormatBreakdown:
		return NewSimpleWriter(output, WithMode(ModeBreakdown)), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes the same run to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders run with every writer in order and stops on the first error.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// resultOf returns run's result, or an empty one when run carries none.
func resultOf(run *model.Run) *model.ClassificationResult {
	if run == nil || run.Result == nil {
		return model.NewClassificationResult()
	}
	return run.Result
}
