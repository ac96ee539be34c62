package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Frontier is the per-run visited-URL set. Admit is the single serialized
// admission point: the first admission of a normalized URL returns true,
// every later one false, so no URL is dispatched for fetching twice within
// a run. A Frontier is owned by one Driver and discarded with the run.
type Frontier struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Admit records normalizedURL as seen and reports whether it was new.
// Empty URLs are never admitted.
func (f *Frontier) Admit(normalizedURL string) bool {
	if normalizedURL == "" {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[normalizedURL]; ok {
		return false
	}
	f.seen[normalizedURL] = struct{}{}
	return true
}

// Len returns the number of admitted URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// NormalizeURL standardizes a URL so equal pages dedup to equal strings.
// It lowercases the scheme and host, removes default ports and fragments,
// and sorts query parameters.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = u.Query().Encode()

	return u.String(), nil
}
