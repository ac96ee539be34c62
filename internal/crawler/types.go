// Package crawler defines core types shared across subsystems.
package crawler

import (
	"net/http"
	"time"
)

// ArticleRecord is the unit of output: one extracted, validated article.
// Optional fields carry omitempty so empty values are absent from the
// persisted representation rather than stored as nulls.
type ArticleRecord struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Content       string   `json:"content"`
	Summary       string   `json:"summary,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Source        string   `json:"source"`
	ScrapedAt     string   `json:"scraped_at"`
}

// Candidate is an unvalidated extraction result. Every field may be empty;
// the Validator decides whether it becomes a record.
type Candidate struct {
	Title         string
	URL           string
	Author        string
	PublishedDate string
	Content       string
	Summary       string
	Category      string
	Tags          []string
	ImageURL      string
	Source        string
}

// JobStatus represents the lifecycle state of a crawl job.
type JobStatus string

// Job status values reported by the job registry. A job transitions from
// running to exactly one terminal state and is never revisited.
const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is the metadata tracked for each submitted crawl.
type Job struct {
	ID        string     `json:"id"`
	Site      string     `json:"site"`
	Status    JobStatus  `json:"status"`
	Started   time.Time  `json:"started_at"`
	Finished  *time.Time `json:"finished_at,omitempty"`
	Records   int        `json:"total_items"`
	ErrorText string     `json:"error,omitempty"`
}

// Terminal reports whether the job reached a final state.
func (j Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// FetchResult is the outcome of a single successful page fetch.
type FetchResult struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Outcome summarizes a finished crawl run.
type Outcome struct {
	ListingsFetched int
	ArticlesFetched int
	PagesFailed     int
	Rejected        int
	Records         int
}
