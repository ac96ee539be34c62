package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prensa-rd/newscrawler/internal/crawler"
)

// PgxPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it too, which keeps the query tests free of a live database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists article records in a single articles table keyed by
// job. Date bounds compare as strings against published_date, matching the
// ISO-ish values the extractors emit.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects a pgx pool and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(pool), pool, nil
}

const createArticlesTable = `
CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	job_id TEXT NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	published_date TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	scraped_at TEXT NOT NULL
)`

// Migrate creates the articles table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createArticlesTable); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

const insertArticle = `INSERT INTO articles
	(job_id, title, url, author, published_date, content, summary, category, tags, image_url, source, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Append inserts one record for the job.
func (s *PostgresStore) Append(ctx context.Context, jobID string, record crawler.ArticleRecord) error {
	_, err := s.pool.Exec(ctx, insertArticle,
		jobID,
		record.Title,
		record.URL,
		record.Author,
		record.PublishedDate,
		record.Content,
		record.Summary,
		record.Category,
		strings.Join(record.Tags, ","),
		record.ImageURL,
		record.Source,
		record.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

const selectColumns = `title, url, author, published_date, content, summary, category, tags, image_url, source, scraped_at`

// ListJob returns the job's records in insertion order.
func (s *PostgresStore) ListJob(ctx context.Context, jobID string) ([]crawler.ArticleRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE job_id = $1 ORDER BY id`, selectColumns)
	records, err := s.queryRecords(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, jobID)
	}
	return records, nil
}

// ListAll returns every stored record, newest-scraped first.
func (s *PostgresStore) ListAll(ctx context.Context, limit int) ([]crawler.ArticleRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles ORDER BY scraped_at DESC`, selectColumns)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

// Search returns the filtered records, newest-published first.
func (s *PostgresStore) Search(ctx context.Context, filter Filter) ([]crawler.ArticleRecord, error) {
	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category ILIKE %s", arg("%"+filter.Category+"%")))
	}
	if filter.Source != "" {
		clauses = append(clauses, fmt.Sprintf("source ILIKE %s", arg("%"+filter.Source+"%")))
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, fmt.Sprintf("published_date >= %s", arg(filter.DateFrom)))
	}
	if filter.DateTo != "" {
		clauses = append(clauses, fmt.Sprintf("published_date <= %s", arg(filter.DateTo+"T23:59:59")))
	}

	query := fmt.Sprintf(`SELECT %s FROM articles`, selectColumns)
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY published_date DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %s`, arg(filter.Limit))
	}
	return s.queryRecords(ctx, query, args...)
}

// CountByCategory aggregates record counts per category, descending.
func (s *PostgresStore) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM articles WHERE category <> '' GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var row CategoryCount
		if err := rows.Scan(&row.Category, &row.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return out, nil
}

// CountBySource aggregates record counts per source, descending.
func (s *PostgresStore) CountBySource(ctx context.Context) ([]SourceCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM articles WHERE source <> '' GROUP BY source ORDER BY COUNT(*) DESC, source`)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var row SourceCount
		if err := rows.Scan(&row.Source, &row.Count); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source counts: %w", err)
	}
	return out, nil
}

// DeleteJob removes the job's records.
func (s *PostgresStore) DeleteJob(ctx context.Context, jobID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM articles WHERE job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("delete job records: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNoRecords, jobID)
	}
	return nil
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]crawler.ArticleRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var records []crawler.ArticleRecord
	for rows.Next() {
		var (
			record crawler.ArticleRecord
			tags   string
		)
		if err := rows.Scan(
			&record.Title,
			&record.URL,
			&record.Author,
			&record.PublishedDate,
			&record.Content,
			&record.Summary,
			&record.Category,
			&tags,
			&record.ImageURL,
			&record.Source,
			&record.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		if tags != "" {
			record.Tags = strings.Split(tags, ",")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return records, nil
}
