package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/kalkar/skewscan/internal/model"
)

// MarkdownWriter outputs runs in Markdown, for sharing with proof-readers.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders run as Markdown.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)
	result := resultOf(run)

	w.writeHeader(md, run, result)
	w.writeSummary(md, result)
	w.writeReasons(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run, result *model.ClassificationResult) {
	md.H1("Skewscan Report")
	md.PlainText("")

	rows := [][]string{}
	if run != nil {
		rows = append(rows,
			[]string{"Corpus", "`" + run.CorpusDir + "`"},
			[]string{"Pages", strconv.Itoa(run.CorpusSize)},
		)
		if run.ID != "" {
			rows = append(rows, []string{"Run", "`" + run.ID + "`"})
		}
		if !run.StartedAt.IsZero() {
			rows = append(rows, []string{"Date", run.StartedAt.Format("2006-01-02 15:04:05 MST")})
		}
		rows = append(rows,
			[]string{"Last line threshold", strconv.Itoa(run.Thresholds.LastLineLength)},
			[]string{"Column marker threshold", strconv.Itoa(run.Thresholds.ColumnMarkers)},
			[]string{"Empty line threshold", strconv.Itoa(run.Thresholds.EmptyLines)},
		)
	}
	rows = append(rows, []string{"Flagged pages", strconv.Itoa(result.Total())})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSummary writes the per-reason counts and, when anything was flagged,
// a pie chart of their distribution.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.ClassificationResult) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllSkewReasons()))
	for _, reason := range model.AllSkewReasons() {
		rows = append(rows, []string{"`" + reason.String() + "`", reason.Description(), strconv.Itoa(result.Count(reason))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Meaning", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	if result.Total() == 0 {
		md.Tip("No skewed pages detected.")
		md.PlainText("")
		return
	}

	w.writePieChart(md, result)
	md.Warningf("%d page(s) look skewed and should be rescanned or checked by hand.", result.Total())
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of flagged pages per reason.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.ClassificationResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Flagged Pages by Reason"),
		piechart.WithShowData(true),
	)

	for _, reason := range model.AllSkewReasons() {
		if n := result.Count(reason); n > 0 {
			chart.LabelAndIntValue(reason.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeReasons writes one section per reason listing flagged pages.
func (w *MarkdownWriter) writeReasons(md *markdown.Markdown, result *model.ClassificationResult) {
	md.H2("Flagged Pages")
	md.PlainText("")

	for _, reason := range model.AllSkewReasons() {
		md.H3(reason.String())
		md.PlainText("")

		ids := result.IDs(reason)
		if len(ids) == 0 {
			md.PlainText("None.")
			md.PlainText("")
			continue
		}
		md.BulletList(ids...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by skewscan*")
}
