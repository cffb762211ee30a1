package crawler

import (
	"strconv"
	"time"
)

// Task is one URL scheduled for fetching
type Task struct {
	URL        string // Normalized URL, the deduplication key
	Recurse    bool   // Schedule in-domain links found on this page
	Referrer   string // Normalized URL of the page that discovered this one, empty for the seed
	Depth      int    // Link distance from the seed
	AnchorText string // Text of the anchor that discovered this URL
}

// Class is the terminal classification of a visited URL
type Class string

const (
	// ClassOK is a successful response (status below 400)
	ClassOK Class = "ok"
	// ClassInvalidURL is a target that is syntactically unusable and was never fetched
	ClassInvalidURL Class = "invalid_url"
	// ClassTransportFailure covers timeouts, DNS failures and resets before any response
	ClassTransportFailure Class = "transport_failure"
	// ClassHTTPError is a response with a status in [400,600)
	ClassHTTPError Class = "http_error"
	// ClassOutOfScopeRedirect is a successful response whose final URL left the crawled domain
	ClassOutOfScopeRedirect Class = "out_of_scope_redirect"
	// ClassFault is a worker failure the fetcher itself did not classify
	ClassFault Class = "fault"
)

// Status sentinels used where no HTTP status code exists
const (
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Outcome is the per-URL record of a crawl
type Outcome struct {
	StatusCode int         // HTTP status of the final response, 0 when none was received
	Class      Class       // Terminal classification
	Size       int64       // Response body size in bytes, 0 for failures and HTTP errors
	Referrer   string      // URL that first discovered this one, resolved by the orchestrator
	AnchorText string      // Text of the referrer's anchor
	Depth      int         // Depth at which the URL was discovered
	Recurse    bool        // Whether the URL was treated as part of the crawled site
	FinalURL   string      // URL after redirects, empty when nothing was fetched
	Timing     HTTPMetrics // Request timing, zero when nothing was fetched
	Detail     string      // Error message for transport failures and faults
}

// Status renders the outcome status the way reports show it: the HTTP
// status code, or one of the "invalid" / "error" sentinels.
func (o Outcome) Status() string {
	switch o.Class {
	case ClassInvalidURL:
		return StatusInvalid
	case ClassTransportFailure, ClassFault:
		return StatusError
	default:
		return strconv.Itoa(o.StatusCode)
	}
}

// IsHTTPError reports whether a well-formed response carried a 4xx/5xx status
func (o Outcome) IsHTTPError() bool {
	return o.Class == ClassHTTPError
}

// IsFailure reports whether the URL could not be fetched or returned an error status
func (o Outcome) IsFailure() bool {
	switch o.Class {
	case ClassInvalidURL, ClassTransportFailure, ClassHTTPError, ClassFault:
		return true
	default:
		return false
	}
}

// Results maps every visited normalized URL to its outcome
type Results map[string]Outcome

// FetchResult is what a Fetcher returns for one task
type FetchResult struct {
	Task    Task
	Outcome Outcome
	Links   []Task // Candidate links; Referrer is left for the orchestrator to fill
}

// CrawlStats summarizes a finished crawl
type CrawlStats struct {
	PagesCrawled int
	ErrorCount   int
	Waves        int
	StartTime    time.Time
	Duration     time.Duration
}
