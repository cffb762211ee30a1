// Package scope classifies URLs for the crawler.
// It decides whether a URL is worth fetching, produces the normalized form
// used as the deduplication key, and tells whether a URL belongs to the
// same site as the seed.
package scope

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SchemeWeb is the scheme class shared by http and https.
const SchemeWeb = "web"

// Mode selects how the registrable domain of a host is derived.
type Mode string

const (
	// ModeLabels keeps the last two dot-separated labels of the host.
	// It mishandles multi-part suffixes such as .co.uk or .github.io.
	ModeLabels Mode = "labels"
	// ModePublicSuffix uses the public suffix list (eTLD+1).
	ModePublicSuffix Mode = "publicsuffix"
)

var (
	// ErrUnknownMode is returned for a domain mode other than labels or publicsuffix
	ErrUnknownMode = errors.New("unknown domain mode")
	// ErrNoHost is returned when a seed URL has no host part
	ErrNoHost = errors.New("url has no host")
)

// invalidPrefixes are pseudo-URLs that can never be fetched.
var invalidPrefixes = []string{"javascript:", "void(", "#", "tel:", "mailto:"}

// Identity is the (scheme class, registrable domain) pair that defines a site.
type Identity struct {
	SchemeClass string
	Domain      string
}

func (i Identity) String() string {
	return i.SchemeClass + "://" + i.Domain
}

// Classifier computes domain identities using a fixed Mode.
// The zero value uses ModeLabels.
type Classifier struct {
	mode Mode
}

// NewClassifier returns a classifier for the given mode. An empty mode means ModeLabels.
func NewClassifier(mode Mode) (Classifier, error) {
	switch mode {
	case "":
		return Classifier{mode: ModeLabels}, nil
	case ModeLabels, ModePublicSuffix:
		return Classifier{mode: mode}, nil
	default:
		return Classifier{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Mode returns the mode the classifier was built with.
func (c Classifier) Mode() Mode {
	if c.mode == "" {
		return ModeLabels
	}
	return c.mode
}

// Identity returns the domain identity of rawURL.
func (c Classifier) Identity(rawURL string) (Identity, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		SchemeClass: schemeClass(u.Scheme),
		Domain:      c.registrableDomain(strings.ToLower(u.Host)),
	}, nil
}

// IsSameDomain reports whether rawURL shares scheme class and registrable
// domain with base. Unparsable URLs are never in the same domain.
func (c Classifier) IsSameDomain(rawURL string, base Identity) bool {
	id, err := c.Identity(rawURL)
	if err != nil {
		return false
	}
	return id == base
}

// Site is the identity of a crawled site bound to the classifier that computed
// it, so that every later comparison uses the same domain mode.
type Site struct {
	Identity   Identity
	classifier Classifier
}

// Site returns the site of seedURL.
func (c Classifier) Site(seedURL string) (Site, error) {
	id, err := c.Identity(seedURL)
	if err != nil {
		return Site{}, err
	}
	return Site{Identity: id, classifier: c}, nil
}

// Contains reports whether rawURL belongs to the site.
func (s Site) Contains(rawURL string) bool {
	return s.classifier.IsSameDomain(rawURL, s.Identity)
}

// Mode returns the domain mode of the site.
func (s Site) Mode() Mode {
	return s.classifier.Mode()
}

func (s Site) String() string {
	return s.Identity.String()
}

func (c Classifier) registrableDomain(host string) string {
	if c.Mode() == ModePublicSuffix {
		hostname, port := splitHostPort(host)
		etld1 := hostname
		if net.ParseIP(hostname) == nil {
			// localhost and bare suffixes have no eTLD+1 and stay whole.
			if d, err := publicsuffix.EffectiveTLDPlusOne(hostname); err == nil {
				etld1 = d
			}
		}
		if port != "" {
			return etld1 + ":" + port
		}
		return etld1
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func splitHostPort(host string) (string, string) {
	h, p, err := net.SplitHostPort(host)
	if err != nil {
		return host, ""
	}
	return h, p
}

func schemeClass(scheme string) string {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return SchemeWeb
	default:
		return strings.ToLower(scheme)
	}
}

// DomainIdentity returns the identity of rawURL using the last-two-labels heuristic.
func DomainIdentity(rawURL string) (Identity, error) {
	return Classifier{mode: ModeLabels}.Identity(rawURL)
}

// IsSameDomain is Classifier.IsSameDomain with the last-two-labels heuristic.
func IsSameDomain(rawURL string, base Identity) bool {
	return Classifier{mode: ModeLabels}.IsSameDomain(rawURL, base)
}

// IsValidURL reports whether rawURL can be fetched at all: pseudo-schemes
// and bare fragments are rejected, as is anything without both a scheme and a host.
func IsValidURL(rawURL string) bool {
	for _, prefix := range invalidPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return false
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Normalize strips the fragment from rawURL. Path and query are kept verbatim;
// an empty query drops the trailing '?'.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	return u.String(), nil
}

// SeedURL prepares a user supplied seed. A seed without an explicit
// http:// or https:// scheme is treated as http://.
func SeedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse seed %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoHost, raw)
	}
	return raw, nil
}
