package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPClient(t *testing.T) {
	// Create test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "Test-Crawler/1.0" {
			t.Errorf("Expected User-Agent 'Test-Crawler/1.0', got '%s'", ua)
		}
		if accept := r.Header.Get("Accept"); accept != "*/*" {
			t.Errorf("Expected Accept '*/*', got '%s'", accept)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		// Add delay to test TTFB
		time.Sleep(50 * time.Millisecond)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Test Page</body></html>"))
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 30*time.Second)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}

	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("Expected content type 'text/html; charset=utf-8', got '%s'", resp.ContentType)
	}

	if string(resp.Body) != "<html><body>Test Page</body></html>" {
		t.Errorf("Unexpected body: %s", resp.Body)
	}

	if resp.FinalURL != server.URL {
		t.Errorf("Expected final URL %s, got %s", server.URL, resp.FinalURL)
	}

	// Check metrics
	if resp.Metrics.TTFB < 50*time.Millisecond {
		t.Errorf("TTFB should be at least 50ms, got %v", resp.Metrics.TTFB)
	}

	if resp.Metrics.DownloadTime < resp.Metrics.TTFB {
		t.Errorf("Download time (%v) should be >= TTFB (%v)", resp.Metrics.DownloadTime, resp.Metrics.TTFB)
	}

	// Fresh client, so the connection was dialed for this request.
	if resp.Metrics.TCPConnect <= 0 {
		t.Errorf("Expected TCP connect time to be recorded, got %v", resp.Metrics.TCPConnect)
	}
	if resp.Metrics.DNSLookup != 0 {
		t.Errorf("Expected no DNS lookup for an IP host, got %v", resp.Metrics.DNSLookup)
	}
}

func TestHTTPClientDefaultUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewHTTPClient("", 5*time.Second)
	defer client.Close()

	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}

	if got != DefaultUserAgent {
		t.Errorf("Expected User-Agent %q, got %q", DefaultUserAgent, got)
	}
}

func TestHTTPClientErrorStatusSkipsBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"gone", http.StatusGone},
		{"server error", http.StatusInternalServerError},
		{"unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("error page body"))
			}))
			defer server.Close()

			client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
			defer client.Close()

			resp, err := client.Get(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Error statuses should not be errors: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if len(resp.Body) != 0 {
				t.Errorf("Expected empty body for error status, got %d bytes", len(resp.Body))
			}
		})
	}
}

func TestHTTPClientFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("moved here"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	defer client.Close()

	resp, err := client.Get(context.Background(), server.URL+"/old")
	if err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 after redirect, got %d", resp.StatusCode)
	}
	if resp.FinalURL != server.URL+"/new" {
		t.Errorf("Expected final URL %s/new, got %s", server.URL, resp.FinalURL)
	}
	if string(resp.Body) != "moved here" {
		t.Errorf("Unexpected body: %s", resp.Body)
	}
}

func TestHTTPClientRedirectLoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	defer client.Close()

	_, err := client.Get(context.Background(), server.URL+"/loop")
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("Expected ErrTooManyRedirects, got %v", err)
	}
}

func TestHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 100*time.Millisecond)
	defer client.Close()

	start := time.Now()
	_, err := client.Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Timeout took too long: %v", elapsed)
	}
}

func TestHTTPClientCustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Custom-Header"); got != "custom-value" {
			t.Errorf("Expected X-Custom-Header 'custom-value', got '%s'", got)
		}
		if got := r.Header.Get("Accept"); got != "text/html" {
			t.Errorf("Expected Accept 'text/html', got '%s'", got)
		}
		if got := r.Header.Get("User-Agent"); got != "Override/2.0" {
			t.Errorf("Expected User-Agent override, got '%s'", got)
		}
	}))
	defer server.Close()

	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	defer client.Close()

	client.SetAccept("text/html")
	client.SetCustomHeaders(map[string]string{
		"X-Custom-Header": "custom-value",
		"User-Agent":      "Override/2.0",
	})

	if _, err := client.Get(context.Background(), server.URL); err != nil {
		t.Fatalf("Failed to get URL: %v", err)
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection reset by peer")
}

func TestHTTPClientSetTransport(t *testing.T) {
	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	client.SetTransport(failingTransport{})

	_, err := client.Get(context.Background(), "http://example.com/")
	if err == nil {
		t.Fatal("Expected transport error")
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("Expected wrapped transport error, got %v", err)
	}
}

func TestHTTPClientInvalidURL(t *testing.T) {
	client := NewHTTPClient("Test-Crawler/1.0", 5*time.Second)
	defer client.Close()

	if _, err := client.Get(context.Background(), "http://[::1"); err == nil {
		t.Error("Expected error for malformed URL")
	}
}

func TestIsErrorStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected bool
	}{
		{200, false},
		{301, false},
		{399, false},
		{400, true},
		{404, true},
		{500, true},
		{599, true},
		{600, false},
	}

	for _, tt := range tests {
		if got := isErrorStatus(tt.code); got != tt.expected {
			t.Errorf("isErrorStatus(%d) = %v, want %v", tt.code, got, tt.expected)
		}
	}
}
