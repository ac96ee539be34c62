// Package snapshot stores raw HTML page bodies keyed by crawl-relative
// object names, for offline reprocessing and extractor debugging.
package snapshot

import "context"

// Store persists one page body under a key.
type Store interface {
	Save(ctx context.Context, key string, body []byte) error
}

// Noop discards every snapshot.
type Noop struct{}

// NewNoop returns a Store that keeps nothing.
func NewNoop() Noop { return Noop{} }

// Save discards the body.
func (Noop) Save(context.Context, string, []byte) error { return nil }
