package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/masahif/find404/internal/crawler"
)

// Report formats
const (
	FormatConsole  = "console"
	FormatJSONL    = "jsonl"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format
var ErrUnknownFormat = errors.New("unknown report format")

// Writer renders the results of one crawl
type Writer interface {
	// Write outputs the results of crawling seed
	Write(seed string, results crawler.Results) error
}

// Entry is one row of a report
type Entry struct {
	URL     string
	Outcome crawler.Outcome
}

// Entries returns the results sorted by size ascending, ties broken by URL
func Entries(results crawler.Results) []Entry {
	entries := make([]Entry, 0, len(results))
	for url, outcome := range results {
		entries = append(entries, Entry{URL: url, Outcome: outcome})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Outcome.Size != entries[j].Outcome.Size {
			return entries[i].Outcome.Size < entries[j].Outcome.Size
		}
		return entries[i].URL < entries[j].URL
	})

	return entries
}

// IsValidFormat reports whether format names a known writer
func IsValidFormat(format string) bool {
	switch format {
	case FormatConsole, FormatJSONL, FormatMarkdown:
		return true
	default:
		return false
	}
}

// NewWriter returns the writer for format, writing to output
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatConsole, "":
		return NewConsoleWriter(output), nil
	case FormatJSONL:
		return NewJSONLWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
