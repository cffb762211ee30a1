package report

import (
	"fmt"

	"github.com/masahif/find404/internal/crawler"
	"github.com/masahif/find404/internal/scope"
)

// Findings lists the problems that fail a run, in report order
type Findings []string

// HasFindings reports whether the run should fail
func (f Findings) HasFindings() bool {
	return len(f) > 0
}

// Evaluate checks every result for an HTTP error status and, when maxSize is
// positive, for in-domain pages larger than maxSize bytes. Invalid URLs and
// transport failures are reported but do not count as findings.
func Evaluate(seed string, results crawler.Results, maxSize int64, classifier scope.Classifier) Findings {
	site, err := classifier.Site(seed)
	checkSize := maxSize > 0 && err == nil

	var findings Findings
	for _, entry := range Entries(results) {
		if entry.Outcome.IsHTTPError() {
			findings = append(findings, fmt.Sprintf("Error: %s returned status code %d", entry.URL, entry.Outcome.StatusCode))
		}
		if checkSize && entry.Outcome.Size > maxSize && site.Contains(entry.URL) {
			findings = append(findings, fmt.Sprintf(
				"Error: %s exceeds maximum size of %d bytes (actual size: %d bytes)",
				entry.URL, maxSize, entry.Outcome.Size,
			))
		}
	}

	return findings
}
