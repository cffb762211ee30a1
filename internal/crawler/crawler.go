// Package crawler provides the core link checking crawl.
// It walks a site breadth-first in depth-aligned waves, fetching every
// discovered URL exactly once with a bounded pool of workers, and records
// the status and size of each page and linked resource.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masahif/find404/internal/scope"
)

// DefaultMaxWorkers is the worker pool size used when none is configured
const DefaultMaxWorkers = 10

// DefaultRequestTimeout bounds every single fetch
const DefaultRequestTimeout = 10 * time.Second

// Unbounded disables the depth limit
const Unbounded = -1

// Options configures a crawl.
//
// MaxDepth 0 is a real limit that visits the seed alone; use Unbounded (or
// DefaultOptions) for a full crawl. The zero Options is rejected by NewCrawler
// because MaxWorkers must be positive.
type Options struct {
	MaxWorkers int              // Concurrent fetches per wave
	MaxDepth   int              // Deepest admitted link distance, negative for no limit
	Classifier scope.Classifier // Domain equivalence for the seed and every link
}

// DefaultOptions returns options for an unbounded crawl with the default
// worker count and the last-two-labels domain heuristic.
func DefaultOptions() Options {
	return Options{
		MaxWorkers: DefaultMaxWorkers,
		MaxDepth:   Unbounded,
	}
}

// Crawler runs crawls. A Crawler may be reused for several crawls but not
// concurrently.
type Crawler struct {
	opts     Options
	fetcher  Fetcher
	observer Observer

	stats      CrawlStats
	statsMutex sync.RWMutex
}

// NewCrawler creates a crawler fetching through fetcher and reporting progress
// to observer (which may be nil).
func NewCrawler(opts Options, fetcher Fetcher, observer Observer) (*Crawler, error) {
	if opts.MaxWorkers <= 0 {
		return nil, ErrInvalidWorkers
	}
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if observer == nil {
		observer = NopObserver{}
	}

	return &Crawler{
		opts:     opts,
		fetcher:  fetcher,
		observer: observer,
	}, nil
}

// Crawl crawls the site of seed and returns the outcome of every visited URL.
//
// Only an unusable seed fails the crawl. If ctx is cancelled the crawl stops
// dispatching, waits for in-flight fetches and returns what it has together
// with the context error.
func (c *Crawler) Crawl(ctx context.Context, seed string) (Results, error) {
	seedURL, err := scope.SeedURL(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	site, err := c.opts.Classifier.Site(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	start, err := scope.Normalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	c.resetStats()
	defer c.finishStats()

	visited := NewVisitedSet()
	visited.Add(start, "")

	results := make(Results)
	frontier := []Task{{URL: start, Recurse: true, Depth: 0}}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		c.observer.WaveStarted(frontier[0].Depth, len(frontier))
		c.incrementWaves()

		frontier = c.runWave(ctx, frontier, site, visited, results)
	}

	return results, ctx.Err()
}

// runWave fetches every task of the frontier through the worker pool and
// merges results as they arrive. It returns the next frontier.
func (c *Crawler) runWave(ctx context.Context, frontier []Task, site scope.Site, visited *VisitedSet, results Results) []Task {
	completed := make(chan *FetchResult, c.opts.MaxWorkers)

	go func() {
		defer close(completed)

		var g errgroup.Group
		g.SetLimit(c.opts.MaxWorkers)
		for _, task := range frontier {
			if ctx.Err() != nil {
				break
			}
			task := task
			g.Go(func() error {
				if result := c.fetch(ctx, task, site); result != nil {
					completed <- result
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	var next []Task
	for result := range completed {
		next = append(next, c.merge(result, visited, results)...)
	}

	return next
}

// fetch runs the fetcher for one task. Errors and panics escaping the
// fetcher are recorded as faults so that they never abort the wave.
// A fetch abandoned because ctx was cancelled yields nil: the URL was never
// checked and is left out of the results.
func (c *Crawler) fetch(ctx context.Context, task Task, site scope.Site) (result *FetchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = faultResult(task, fmt.Errorf("panic: %v", r))
		}
	}()

	c.observer.URLStarted(task)

	result, err := c.fetcher.Fetch(ctx, task, site)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil
		}
		return faultResult(task, err)
	}
	if result == nil {
		return faultResult(task, fmt.Errorf("fetcher returned no result"))
	}
	return result
}

func faultResult(task Task, err error) *FetchResult {
	return &FetchResult{
		Task: task,
		Outcome: Outcome{
			Class:  ClassFault,
			Detail: err.Error(),
		},
	}
}

// merge records the outcome of one fetch and admits its links into the
// next frontier. It runs on the orchestrator goroutine only.
func (c *Crawler) merge(result *FetchResult, visited *VisitedSet, results Results) []Task {
	task := result.Task

	outcome := result.Outcome
	outcome.Referrer, _ = visited.Referrer(task.URL)
	outcome.AnchorText = task.AnchorText
	outcome.Depth = task.Depth
	outcome.Recurse = task.Recurse
	results[task.URL] = outcome

	c.recordOutcome(outcome)
	c.observer.URLCompleted(task.URL, outcome)

	var admitted []Task
	for _, link := range result.Links {
		if c.opts.MaxDepth >= 0 && link.Depth > c.opts.MaxDepth {
			continue
		}
		if !visited.Add(link.URL, task.URL) {
			continue
		}

		link.Referrer = task.URL
		admitted = append(admitted, link)
		c.observer.LinkDiscovered(task.URL, link)
	}

	return admitted
}

// GetStats returns statistics of the current or last crawl
func (c *Crawler) GetStats() CrawlStats {
	c.statsMutex.RLock()
	defer c.statsMutex.RUnlock()

	stats := c.stats
	if stats.Duration == 0 && !stats.StartTime.IsZero() {
		stats.Duration = time.Since(stats.StartTime)
	}
	return stats
}

func (c *Crawler) resetStats() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats = CrawlStats{StartTime: time.Now()}
}

func (c *Crawler) finishStats() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.Duration = time.Since(c.stats.StartTime)
}

func (c *Crawler) incrementWaves() {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.Waves++
}

func (c *Crawler) recordOutcome(outcome Outcome) {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()
	c.stats.PagesCrawled++
	if outcome.IsFailure() {
		c.stats.ErrorCount++
	}
}

// Crawl crawls seed with the default fetcher and request timeout.
// maxDepth < 0 means no depth limit.
func Crawl(ctx context.Context, seed string, maxWorkers, maxDepth int) (Results, error) {
	httpClient := NewHTTPClient(DefaultUserAgent, DefaultRequestTimeout)
	defer httpClient.Close()

	c, err := NewCrawler(Options{
		MaxWorkers: maxWorkers,
		MaxDepth:   maxDepth,
	}, NewPageFetcher(httpClient), nil)
	if err != nil {
		return nil, err
	}

	return c.Crawl(ctx, seed)
}
