// Package jobs implements the in-memory crawl job registry with an explicit
// lifecycle: create, single terminal transition, read, delete.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prensa-rd/newscrawler/internal/crawler"
)

// ErrNotFound is returned for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// ErrTerminal is returned when a second terminal transition is attempted.
var ErrTerminal = errors.New("job already in a terminal state")

// Registry is a thread-safe job store. Jobs transition running → completed
// or running → failed exactly once and are never revisited after that.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]crawler.Job
	idGen crawler.IDGenerator
	clock crawler.Clock
}

// New builds an empty Registry.
func New(idGen crawler.IDGenerator, clock crawler.Clock) *Registry {
	return &Registry{
		jobs:  make(map[string]crawler.Job),
		idGen: idGen,
		clock: clock,
	}
}

// Create registers a new running job for site and returns it.
func (r *Registry) Create(_ context.Context, site string) (crawler.Job, error) {
	id, err := r.idGen.NewID()
	if err != nil {
		return crawler.Job{}, fmt.Errorf("new job id: %w", err)
	}
	job := crawler.Job{
		ID:      id,
		Site:    site,
		Status:  crawler.JobStatusRunning,
		Started: r.clock.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()
	return job, nil
}

// Complete transitions the job to completed with its emitted record count.
func (r *Registry) Complete(_ context.Context, jobID string, records int) error {
	return r.finish(jobID, func(job *crawler.Job) {
		job.Status = crawler.JobStatusCompleted
		job.Records = records
	})
}

// Fail transitions the job to failed with the error detail.
func (r *Registry) Fail(_ context.Context, jobID string, detail string) error {
	return r.finish(jobID, func(job *crawler.Job) {
		job.Status = crawler.JobStatusFailed
		job.ErrorText = detail
	})
}

func (r *Registry) finish(jobID string, apply func(*crawler.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if job.Terminal() {
		return fmt.Errorf("%w: %s", ErrTerminal, jobID)
	}
	apply(&job)
	finished := r.clock.Now().UTC()
	job.Finished = &finished
	r.jobs[jobID] = job
	return nil
}

// Get returns the job for jobID.
func (r *Registry) Get(_ context.Context, jobID string) (crawler.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return crawler.Job{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, nil
}

// Delete removes the job from the registry. Unknown IDs are a no-op.
func (r *Registry) Delete(_ context.Context, jobID string) {
	r.mu.Lock()
	delete(r.jobs, jobID)
	r.mu.Unlock()
}
