// Package publisher announces finished crawl jobs to downstream consumers.
package publisher

import (
	"context"
	"sync"
	"time"
)

// CompletionEvent is the payload published when a crawl job reaches a
// terminal state.
type CompletionEvent struct {
	JobID      string    `json:"job_id"`
	Site       string    `json:"site"`
	Status     string    `json:"status"`
	Records    int       `json:"records"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher emits completion events.
type Publisher interface {
	Publish(ctx context.Context, event CompletionEvent) error
}

// Noop drops every event.
type Noop struct{}

// NewNoop returns a Publisher that publishes nowhere.
func NewNoop() Noop { return Noop{} }

// Publish discards the event.
func (Noop) Publish(context.Context, CompletionEvent) error { return nil }

// Memory collects events in memory. Meant for tests and local runs.
type Memory struct {
	mu     sync.Mutex
	events []CompletionEvent
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory { return &Memory{} }

// Publish records the event.
func (m *Memory) Publish(_ context.Context, event CompletionEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []CompletionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionEvent, len(m.events))
	copy(out, m.events)
	return out
}
