// Package parser extracts outbound links from HTML documents.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTMLParser extracts anchors from HTML and resolves them against a base URL
type HTMLParser struct {
	baseURL *url.URL
}

// ParseResult contains the links found in a document, in document order
type ParseResult struct {
	Links []Link
}

// Link represents a parsed anchor
type Link struct {
	URL  string // Absolute URL with fragment, or the raw href when it is not a URL
	Text string // Anchor text, whitespace-joined
}

// NewHTMLParser creates a parser resolving relative hrefs against baseURL.
// Callers should pass the final URL of a response, after redirects.
func NewHTMLParser(baseURL string) (*HTMLParser, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &HTMLParser{baseURL: parsedURL}, nil
}

// Parse decodes htmlContent using the charset announced in contentType (or
// sniffed from the document) and returns every anchor with a non-empty href.
// Hrefs that cannot be parsed as URLs are returned as written.
func (p *HTMLParser) Parse(htmlContent []byte, contentType string) (*ParseResult, error) {
	reader, err := charset.NewReader(bytes.NewReader(htmlContent), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &ParseResult{
		Links: []Link{},
	}
	p.traverse(doc, result)

	return result, nil
}

// traverse recursively walks the HTML tree
func (p *HTMLParser) traverse(n *html.Node, result *ParseResult) {
	if n.Type == html.ElementNode && n.Data == "a" {
		p.parseAnchor(n, result)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.traverse(c, result)
	}
}

// parseAnchor extracts the link of an anchor tag
func (p *HTMLParser) parseAnchor(n *html.Node, result *ParseResult) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}

	if href == "" {
		return
	}

	target, err := p.resolveURL(href)
	if err != nil {
		target = href
	}

	result.Links = append(result.Links, Link{
		URL:  target,
		Text: extractText(n),
	})
}

// resolveURL converts relative URLs to absolute URLs
func (p *HTMLParser) resolveURL(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}

	return p.baseURL.ResolveReference(u).String(), nil
}

// extractText joins the text content below n
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := extractText(c); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " ")
}
