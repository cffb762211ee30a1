package report

import (
	"encoding/json"
	"io"

	"github.com/masahif/find404/internal/crawler"
)

// jsonlRecord is one line of JSONL output.
// StatusCode holds an int for HTTP statuses and a string for the
// "invalid" and "error" sentinels.
type jsonlRecord struct {
	URL        string  `json:"url"`
	StatusCode any     `json:"status_code"`
	Size       int64   `json:"size"`
	Referrer   *string `json:"referrer"`
}

// JSONLWriter outputs one JSON object per URL, one per line
type JSONLWriter struct {
	baseWriter
}

// NewJSONLWriter creates a JSONLWriter that outputs to the given writer.
func NewJSONLWriter(output io.Writer) *JSONLWriter {
	return &JSONLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the results as JSON lines. The seed is implied by the
// entry without referrer.
func (w *JSONLWriter) Write(_ string, results crawler.Results) error {
	encoder := json.NewEncoder(w.output)
	encoder.SetEscapeHTML(false)

	for _, entry := range Entries(results) {
		if err := encoder.Encode(newJSONLRecord(entry)); err != nil {
			return err
		}
	}
	return nil
}

func newJSONLRecord(entry Entry) jsonlRecord {
	record := jsonlRecord{
		URL:  entry.URL,
		Size: entry.Outcome.Size,
	}

	switch entry.Outcome.Class {
	case crawler.ClassInvalidURL, crawler.ClassTransportFailure, crawler.ClassFault:
		record.StatusCode = entry.Outcome.Status()
	default:
		record.StatusCode = entry.Outcome.StatusCode
	}

	if entry.Outcome.Referrer != "" {
		referrer := entry.Outcome.Referrer
		record.Referrer = &referrer
	}

	return record
}
