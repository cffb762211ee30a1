package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// DefaultUserAgent mimics curl so that servers answer plainly
const DefaultUserAgent = "curl/8.7.1"

// DefaultAccept accepts any content type
const DefaultAccept = "*/*"

// maxRedirects bounds a redirect chain
const maxRedirects = 10

// ErrTooManyRedirects is returned when a redirect chain exceeds maxRedirects
var ErrTooManyRedirects = errors.New("too many redirects")

// HTTPClient performs single-attempt GET requests with timing metrics
type HTTPClient struct {
	client        *http.Client
	userAgent     string
	accept        string
	customHeaders map[string]string
}

// HTTPMetrics contains performance metrics for an HTTP request
// Connection phases are zero when a pooled connection was reused.
type HTTPMetrics struct {
	TTFB         time.Duration // Time to First Byte
	DownloadTime time.Duration // Total download time
	DNSLookup    time.Duration
	TCPConnect   time.Duration
	TLSHandshake time.Duration
}

// HTTPResponse contains the response and metrics.
// Body is not read for 4xx/5xx responses.
type HTTPResponse struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
	Metrics     HTTPMetrics
	FinalURL    string // After following redirects
}

// NewHTTPClient creates a new HTTP client. Each request is bounded by timeout,
// redirects are followed up to a fixed limit.
func NewHTTPClient(userAgent string, timeout time.Duration) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}

	return &HTTPClient{
		client:        client,
		userAgent:     userAgent,
		accept:        DefaultAccept,
		customHeaders: make(map[string]string),
	}
}

// SetTransport replaces the underlying round tripper
func (h *HTTPClient) SetTransport(rt http.RoundTripper) {
	h.client.Transport = rt
}

// SetAccept sets the Accept header sent with every request
func (h *HTTPClient) SetAccept(accept string) {
	if accept != "" {
		h.accept = accept
	}
}

// SetCustomHeaders sets custom HTTP headers. They override the defaults.
func (h *HTTPClient) SetCustomHeaders(headers map[string]string) {
	for k, v := range headers {
		h.customHeaders[k] = v
	}
}

// Get performs an HTTP GET request, following redirects.
// A non-nil error means no HTTP response was obtained (or its body could not
// be read); error statuses are returned as a normal response without body.
func (h *HTTPClient) Get(ctx context.Context, url string) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", h.accept)
	for name, value := range h.customHeaders {
		req.Header.Set(name, value)
	}

	var metrics HTTPMetrics
	var dnsStart, connectStart, tlsStart, firstByteTime time.Time

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			metrics.DNSLookup = time.Since(dnsStart)
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			metrics.TCPConnect = time.Since(connectStart)
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			metrics.TLSHandshake = time.Since(tlsStart)
		},
		GotFirstResponseByte: func() {
			firstByteTime = time.Now()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	startTime := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !firstByteTime.IsZero() {
		metrics.TTFB = firstByteTime.Sub(startTime)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	result := &HTTPResponse{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}

	if !isErrorStatus(resp.StatusCode) {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		result.Body = body
	}

	metrics.DownloadTime = time.Since(startTime)
	result.Metrics = metrics

	return result, nil
}

// isErrorStatus reports whether code is a client or server error
func isErrorStatus(code int) bool {
	return code >= 400 && code < 600
}

// Close releases idle connections
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}
