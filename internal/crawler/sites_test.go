package crawler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"
)

func init() {
	// Set error level logging during tests to only show critical issues
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	slog.SetDefault(logger)
}

// page is a canned response served by a fake site
type page struct {
	status      int
	contentType string
	body        string
	location    string
}

func htmlPage(body string) page {
	return page{status: http.StatusOK, contentType: "text/html; charset=utf-8", body: body}
}

func redirectTo(location string) page {
	return page{status: http.StatusMovedPermanently, location: location}
}

// siteTransport routes requests to in-memory sites keyed by host, so tests can
// use real-looking domains such as example.com and other.org.
type siteTransport struct {
	mu       sync.Mutex
	sites    map[string]map[string]page
	requests map[string]int
}

func newSiteTransport(sites map[string]map[string]page) *siteTransport {
	return &siteTransport{
		sites:    sites,
		requests: make(map[string]int),
	}
}

func (s *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests[req.URL.String()]++
	pages, ok := s.sites[req.URL.Host]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("dial tcp: lookup %s: no such host", req.URL.Host)
	}

	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	if req.URL.RawQuery != "" {
		path += "?" + req.URL.RawQuery
	}

	rec := httptest.NewRecorder()
	p, ok := pages[path]
	switch {
	case !ok:
		http.NotFound(rec, req)
	case p.location != "":
		rec.Header().Set("Location", p.location)
		rec.WriteHeader(p.status)
	default:
		if p.contentType != "" {
			rec.Header().Set("Content-Type", p.contentType)
		}
		rec.WriteHeader(p.status)
		_, _ = rec.WriteString(p.body)
	}

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// requestCount returns how many times url was requested
func (s *siteTransport) requestCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[url]
}

// newTestCrawler builds a crawler whose fetcher talks to transport
func newTestCrawler(t *testing.T, transport http.RoundTripper, maxWorkers, maxDepth int) *Crawler {
	t.Helper()

	httpClient := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	httpClient.SetTransport(transport)

	c, err := NewCrawler(Options{
		MaxWorkers: maxWorkers,
		MaxDepth:   maxDepth,
	}, NewPageFetcher(httpClient), nil)
	if err != nil {
		t.Fatalf("Failed to create crawler: %v", err)
	}
	return c
}
