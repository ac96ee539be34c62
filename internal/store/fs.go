package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prensa-rd/newscrawler/internal/crawler"
)

// FSStore keeps one append-only JSONL file per job under a root directory
// (news_<jobID>.jsonl). Queries scan every job file. Appends within a job
// are serialized; different jobs never contend.
type FSStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", root, err)
	}
	return &FSStore{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Append writes one record as a JSON line to the job's file.
func (s *FSStore) Append(ctx context.Context, jobID string, record crawler.ArticleRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("append canceled: %w", err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	lock := s.jobLock(jobID)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(s.jobPath(jobID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// ListJob returns the job's records in append order.
func (s *FSStore) ListJob(_ context.Context, jobID string) ([]crawler.ArticleRecord, error) {
	records, err := s.readFile(s.jobPath(jobID))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, jobID)
	}
	return records, err
}

// ListAll returns every stored record, newest-scraped first.
func (s *FSStore) ListAll(ctx context.Context, limit int) ([]crawler.ArticleRecord, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	sortByScrapedAtDesc(records)
	return limitRecords(records, limit), nil
}

// Search returns the filtered records, newest-published first.
func (s *FSStore) Search(ctx context.Context, filter Filter) ([]crawler.ArticleRecord, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := records[:0]
	for _, record := range records {
		if filter.Matches(record) {
			filtered = append(filtered, record)
		}
	}
	sortByPublishedDesc(filtered)
	return limitRecords(filtered, filter.Limit), nil
}

// CountByCategory aggregates record counts per category, descending.
func (s *FSStore) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return countsByCategory(records), nil
}

// CountBySource aggregates record counts per source, descending.
func (s *FSStore) CountBySource(ctx context.Context) ([]SourceCount, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return countsBySource(records), nil
}

// DeleteJob removes the job's record file.
func (s *FSStore) DeleteJob(_ context.Context, jobID string) error {
	err := os.Remove(s.jobPath(jobID))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNoRecords, jobID)
	}
	if err != nil {
		return fmt.Errorf("delete job records: %w", err)
	}
	return nil
}

func (s *FSStore) jobPath(jobID string) string {
	// Job IDs are generated UUIDs, but never trust them as path material.
	safe := strings.ReplaceAll(filepath.Base(jobID), string(filepath.Separator), "_")
	return filepath.Join(s.root, fmt.Sprintf("news_%s.jsonl", safe))
}

func (s *FSStore) jobLock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[jobID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[jobID] = lock
	}
	return lock
}

func (s *FSStore) readAll(ctx context.Context) ([]crawler.ArticleRecord, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "news_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("glob store dir: %w", err)
	}
	var records []crawler.ArticleRecord
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan canceled: %w", err)
		}
		fileRecords, err := s.readFile(match)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func (s *FSStore) readFile(path string) ([]crawler.ArticleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []crawler.ArticleRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record crawler.ArticleRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("decode record in %s: %w", path, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return records, nil
}
