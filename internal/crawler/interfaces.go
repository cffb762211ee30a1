package crawler

import (
	"context"

	"github.com/masahif/find404/internal/scope"
)

// Fetcher fetches a single task. Implementations must be safe for
// concurrent use and must not keep state between calls.
//
// Classified failures (invalid URL, transport failure, HTTP error) are
// reported in the returned Outcome. A non-nil error means the failure
// could not be classified and is recorded by the orchestrator as a fault,
// unless it is the error of a cancelled ctx.
type Fetcher interface {
	Fetch(ctx context.Context, task Task, site scope.Site) (*FetchResult, error)
}

// Observer receives progress events from a crawl.
// URLStarted is called from worker goroutines; the other methods are
// called from the orchestrator goroutine only.
type Observer interface {
	WaveStarted(depth, size int)
	URLStarted(task Task)
	URLCompleted(url string, outcome Outcome)
	LinkDiscovered(from string, task Task)
}
