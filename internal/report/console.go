package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/masahif/find404/internal/crawler"
)

// ConsoleWriter outputs one text block per URL
type ConsoleWriter struct {
	baseWriter
}

// NewConsoleWriter creates a ConsoleWriter that outputs to the given writer.
func NewConsoleWriter(output io.Writer) *ConsoleWriter {
	return &ConsoleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the results in console format.
func (w *ConsoleWriter) Write(seed string, results crawler.Results) error {
	buf := bufio.NewWriter(w.output)

	fmt.Fprintf(buf, "Crawl Results for %s\n", seed)
	fmt.Fprintln(buf, strings.Repeat("=", 50))

	for _, entry := range Entries(results) {
		referrer := entry.Outcome.Referrer
		if referrer == "" {
			referrer = "N/A"
		}

		fmt.Fprintf(buf, "URL: %s\n", entry.URL)
		fmt.Fprintf(buf, "  Status: %s\n", entry.Outcome.Status())
		fmt.Fprintf(buf, "  Size: %d bytes (%s)\n", entry.Outcome.Size, humanize.Bytes(uint64(entry.Outcome.Size)))
		fmt.Fprintf(buf, "  Referrer: %s\n", referrer)
		fmt.Fprintln(buf)
	}

	return buf.Flush()
}
