// Package report renders classification runs.
//
// Writers:
//   - SimpleWriter: plain text, either a bare list of flagged page ids or a
//     per-reason breakdown
//   - JSONWriter: structured output for other tools
//   - MarkdownWriter: a shareable summary with a mermaid pie chart
//
// Every writer implements Writer, so they can be combined with MultiWriter.
package report
