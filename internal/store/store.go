// Package store persists and queries article records. The canonical layout
// is one append-only record set per crawl job; queries are scan+filter over
// the stored records.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/prensa-rd/newscrawler/internal/crawler"
)

// ErrNoRecords is returned when a job has no persisted record set.
var ErrNoRecords = errors.New("no records for job")

// CategoryCount is one row of the category aggregation.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SourceCount is one row of the source aggregation.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Filter narrows a record query. Category and Source are case-insensitive
// substring matches; DateFrom/DateTo bound published_date inclusively
// (YYYY-MM-DD, compared as strings the way the records store them).
type Filter struct {
	Category string
	Source   string
	DateFrom string
	DateTo   string
	Limit    int
}

// ArticleStore is the query-side contract over persisted records. Append
// also satisfies crawler.RecordSink.
type ArticleStore interface {
	Append(ctx context.Context, jobID string, record crawler.ArticleRecord) error
	ListJob(ctx context.Context, jobID string) ([]crawler.ArticleRecord, error)
	ListAll(ctx context.Context, limit int) ([]crawler.ArticleRecord, error)
	Search(ctx context.Context, filter Filter) ([]crawler.ArticleRecord, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
	CountBySource(ctx context.Context) ([]SourceCount, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// Matches reports whether the record passes the filter (limit excluded).
func (f Filter) Matches(record crawler.ArticleRecord) bool {
	if f.Category != "" {
		if record.Category == "" ||
			!strings.Contains(strings.ToLower(record.Category), strings.ToLower(f.Category)) {
			return false
		}
	}
	if f.Source != "" {
		if record.Source == "" ||
			!strings.Contains(strings.ToLower(record.Source), strings.ToLower(f.Source)) {
			return false
		}
	}
	if f.DateFrom != "" && record.PublishedDate < f.DateFrom {
		return false
	}
	if f.DateTo != "" && record.PublishedDate > f.DateTo+"T23:59:59" {
		return false
	}
	return true
}

// sortByScrapedAtDesc orders records newest-scraped first.
func sortByScrapedAtDesc(records []crawler.ArticleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ScrapedAt > records[j].ScrapedAt
	})
}

// sortByPublishedDesc orders records newest-published first.
func sortByPublishedDesc(records []crawler.ArticleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedDate > records[j].PublishedDate
	})
}

func limitRecords(records []crawler.ArticleRecord, limit int) []crawler.ArticleRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func countsByCategory(records []crawler.ArticleRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, record := range records {
		if record.Category != "" {
			counts[record.Category]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func countsBySource(records []crawler.ArticleRecord) []SourceCount {
	counts := make(map[string]int)
	for _, record := range records {
		if record.Source != "" {
			counts[record.Source]++
		}
	}
	out := make([]SourceCount, 0, len(counts))
	for source, count := range counts {
		out = append(out, SourceCount{Source: source, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out
}
