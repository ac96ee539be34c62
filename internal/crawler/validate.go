package crawler

import (
	"strings"
	"time"
)

// Validator is the boundary before persistence: it enforces the
// minimum-field policy and stamps the scrape time.
type Validator struct {
	clock Clock
}

// NewValidator builds a Validator using clock for the scrapedAt stamp.
func NewValidator(clock Clock) *Validator {
	return &Validator{clock: clock}
}

// Validate turns a candidate into a record, or nil when the candidate lacks
// a title or content after trimming. Optional fields that are empty stay
// empty and vanish from the serialized record (omitempty); an empty tag
// slice becomes nil for the same reason. ScrapedAt is stamped at validation
// time, not extraction time.
func (v *Validator) Validate(candidate Candidate) *ArticleRecord {
	title := strings.TrimSpace(candidate.Title)
	content := strings.TrimSpace(candidate.Content)
	if title == "" || content == "" {
		return nil
	}

	record := ArticleRecord{
		Title:         title,
		URL:           candidate.URL,
		Author:        strings.TrimSpace(candidate.Author),
		PublishedDate: strings.TrimSpace(candidate.PublishedDate),
		Content:       content,
		Summary:       strings.TrimSpace(candidate.Summary),
		Category:      strings.TrimSpace(candidate.Category),
		ImageURL:      strings.TrimSpace(candidate.ImageURL),
		Source:        candidate.Source,
		ScrapedAt:     v.clock.Now().UTC().Format(time.RFC3339),
	}
	if len(candidate.Tags) > 0 {
		record.Tags = candidate.Tags
	}
	return &record
}
