package report

import (
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/masahif/find404/internal/crawler"
)

// MarkdownWriter outputs the results as a Markdown document with a summary
// and one table row per URL.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the results in Markdown format.
func (w *MarkdownWriter) Write(seed string, results crawler.Results) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Results for " + seed)
	md.PlainText("")

	w.writeSummary(md, results)
	w.writePages(md, results)

	return md.Build()
}

// writeSummary writes the page counts and an alert when anything failed.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, results crawler.Results) {
	var failed, external int
	for _, outcome := range results {
		if outcome.IsFailure() {
			failed++
		}
		if !outcome.Recurse {
			external++
		}
	}

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URLs Checked", strconv.Itoa(len(results))},
			{"External URLs", strconv.Itoa(external)},
			{"Failures", strconv.Itoa(failed)},
		},
	})
	md.PlainText("")

	if failed > 0 {
		md.Warningf("%d URL(s) could not be fetched or returned an error status.", failed)
	} else {
		md.Tip("No broken links found.")
	}
	md.PlainText("")
}

// writePages writes one row per URL in report order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, results crawler.Results) {
	md.H2("Pages")
	md.PlainText("")

	entries := Entries(results)
	if len(entries) == 0 {
		md.PlainText("No pages crawled.")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		referrer := entry.Outcome.Referrer
		if referrer == "" {
			referrer = "N/A"
		}
		rows = append(rows, []string{
			entry.URL,
			entry.Outcome.Status(),
			humanize.Bytes(uint64(entry.Outcome.Size)),
			referrer,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Size", "Referrer"},
		Rows:   rows,
	})
}
