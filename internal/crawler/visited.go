package crawler

import "sync"

// VisitedSet records every URL discovered during one crawl together with
// the referrer that discovered it first. Entries are never removed.
type VisitedSet struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewVisitedSet creates an empty set
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{entries: make(map[string]string)}
}

// Add inserts url with its referrer if it is absent. It reports whether the
// insert happened; an existing entry keeps its original referrer.
func (v *VisitedSet) Add(url, referrer string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.entries[url]; exists {
		return false
	}
	v.entries[url] = referrer
	return true
}

// Referrer returns the referrer recorded for url
func (v *VisitedSet) Referrer(url string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	referrer, ok := v.entries[url]
	return referrer, ok
}

// Len returns the number of discovered URLs
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return len(v.entries)
}
