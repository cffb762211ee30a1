// Package report turns crawl results into output and an exit decision.
//
// Writers render the same sorted list of entries in different formats:
//   - ConsoleWriter: human readable text, one block per URL
//   - JSONLWriter: one JSON object per line for tool integration
//   - MarkdownWriter: a Markdown table for sharing
//
// Evaluate inspects the results independently of the chosen format and
// reports the broken and oversized pages that should fail the run.
package report
