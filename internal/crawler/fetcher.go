package crawler

import (
	"context"
	"strings"

	"github.com/masahif/find404/internal/parser"
	"github.com/masahif/find404/internal/scope"
)

// PageFetcher is the default Fetcher: one GET per task, link extraction for
// in-scope HTML pages.
type PageFetcher struct {
	httpClient *HTTPClient
}

// NewPageFetcher creates a fetcher using httpClient for requests.
func NewPageFetcher(httpClient *HTTPClient) *PageFetcher {
	return &PageFetcher{httpClient: httpClient}
}

// Fetch fetches task.URL once and classifies the outcome.
// Links are only returned for successful, in-domain HTML pages of recursing tasks.
// A request cut short by ctx returns ctx.Err() instead of an outcome.
func (f *PageFetcher) Fetch(ctx context.Context, task Task, site scope.Site) (*FetchResult, error) {
	result := &FetchResult{Task: task}

	if !scope.IsValidURL(task.URL) {
		result.Outcome = Outcome{Class: ClassInvalidURL}
		return result, nil
	}

	resp, err := f.httpClient.Get(ctx, task.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Outcome = Outcome{
			Class:  ClassTransportFailure,
			Detail: err.Error(),
		}
		return result, nil
	}

	if isErrorStatus(resp.StatusCode) {
		result.Outcome = Outcome{
			StatusCode: resp.StatusCode,
			Class:      ClassHTTPError,
			FinalURL:   resp.FinalURL,
			Timing:     resp.Metrics,
		}
		return result, nil
	}

	result.Outcome = Outcome{
		StatusCode: resp.StatusCode,
		Class:      ClassOK,
		Size:       int64(len(resp.Body)),
		FinalURL:   resp.FinalURL,
		Timing:     resp.Metrics,
	}

	// External pages are checked, never expanded.
	if !task.Recurse {
		return result, nil
	}

	if !site.Contains(resp.FinalURL) {
		result.Outcome.Class = ClassOutOfScopeRedirect
		result.Outcome.Detail = "redirected to " + resp.FinalURL
		return result, nil
	}

	if !isHTML(resp.ContentType) {
		return result, nil
	}

	result.Links = f.extractLinks(task, resp, site)
	return result, nil
}

// extractLinks parses the body and turns every anchor into a candidate task.
// Relative links resolve against the final URL, not the requested one.
// Hrefs that are not URLs are kept verbatim and end up as invalid outcomes.
func (f *PageFetcher) extractLinks(task Task, resp *HTTPResponse, site scope.Site) []Task {
	htmlParser, err := parser.NewHTMLParser(resp.FinalURL)
	if err != nil {
		return nil
	}

	parseResult, err := htmlParser.Parse(resp.Body, resp.ContentType)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool, len(parseResult.Links))
	links := make([]Task, 0, len(parseResult.Links))
	for _, link := range parseResult.Links {
		target := link.URL
		if normalized, err := scope.Normalize(link.URL); err == nil {
			target = normalized
		}
		if seen[target] {
			continue
		}
		seen[target] = true

		links = append(links, Task{
			URL:        target,
			Recurse:    site.Contains(target),
			Depth:      task.Depth + 1,
			AnchorText: link.Text,
		})
	}

	return links
}

func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "text/html")
}
