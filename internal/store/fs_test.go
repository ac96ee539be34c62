package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prensa-rd/newscrawler/internal/crawler"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleRecord(title, scrapedAt, published string) crawler.ArticleRecord {
	return crawler.ArticleRecord{
		Title:         title,
		URL:           "https://example.do/" + title,
		Content:       "Cuerpo de " + title,
		Source:        "Diario Libre",
		Category:      "Actualidad",
		PublishedDate: published,
		ScrapedAt:     scrapedAt,
	}
}

func TestFSStore_AppendAndListJob(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()

	first := sampleRecord("primera", "2024-01-15T10:00:00Z", "2024-01-15")
	second := sampleRecord("segunda", "2024-01-15T11:00:00Z", "2024-01-14")
	require.NoError(t, s.Append(ctx, "job-1", first))
	require.NoError(t, s.Append(ctx, "job-1", second))

	records, err := s.ListJob(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, []crawler.ArticleRecord{first, second}, records)
}

func TestFSStore_ListJobUnknown(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	_, err := s.ListJob(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestFSStore_ListAllSortedByScrapedAt(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "job-1", sampleRecord("vieja", "2024-01-14T09:00:00Z", "2024-01-14")))
	require.NoError(t, s.Append(ctx, "job-2", sampleRecord("nueva", "2024-01-15T09:00:00Z", "2024-01-15")))
	require.NoError(t, s.Append(ctx, "job-1", sampleRecord("media", "2024-01-14T18:00:00Z", "2024-01-14")))

	records, err := s.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "nueva", records[0].Title)
	require.Equal(t, "media", records[1].Title)
	require.Equal(t, "vieja", records[2].Title)

	limited, err := s.ListAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestFSStore_Search(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()

	economia := sampleRecord("finanzas", "2024-01-15T10:00:00Z", "2024-01-15")
	economia.Category = "Economía"
	deportes := sampleRecord("beisbol", "2024-01-15T11:00:00Z", "2024-01-10")
	deportes.Category = "Deportes"
	require.NoError(t, s.Append(ctx, "job-1", economia))
	require.NoError(t, s.Append(ctx, "job-1", deportes))

	records, err := s.Search(ctx, Filter{Category: "econom"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "finanzas", records[0].Title)

	// Unfiltered search sorts newest published first.
	all, err := s.Search(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, "finanzas", all[0].Title)
	require.Equal(t, "beisbol", all[1].Title)
}

func TestFSStore_Counts(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()
	a := sampleRecord("a", "2024-01-15T10:00:00Z", "2024-01-15")
	a.Category = "Economía"
	b := sampleRecord("b", "2024-01-15T10:01:00Z", "2024-01-15")
	b.Category = "Economía"
	c := sampleRecord("c", "2024-01-15T10:02:00Z", "2024-01-15")
	c.Category = "Deportes"
	for _, r := range []crawler.ArticleRecord{a, b, c} {
		require.NoError(t, s.Append(ctx, "job-1", r))
	}

	categories, err := s.CountByCategory(ctx)
	require.NoError(t, err)
	require.Equal(t, []CategoryCount{
		{Category: "Economía", Count: 2},
		{Category: "Deportes", Count: 1},
	}, categories)

	sources, err := s.CountBySource(ctx)
	require.NoError(t, err)
	require.Equal(t, []SourceCount{{Source: "Diario Libre", Count: 3}}, sources)
}

func TestFSStore_DeleteJob(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "job-1", sampleRecord("a", "2024-01-15T10:00:00Z", "2024-01-15")))

	require.NoError(t, s.DeleteJob(ctx, "job-1"))
	_, err := s.ListJob(ctx, "job-1")
	require.ErrorIs(t, err, ErrNoRecords)

	require.ErrorIs(t, s.DeleteJob(ctx, "job-1"), ErrNoRecords)
}

func TestFSStore_JobsAreIsolated(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "job-1", sampleRecord("uno", "2024-01-15T10:00:00Z", "2024-01-15")))
	require.NoError(t, s.Append(ctx, "job-2", sampleRecord("dos", "2024-01-15T10:00:00Z", "2024-01-15")))

	require.NoError(t, s.DeleteJob(ctx, "job-1"))
	records, err := s.ListJob(ctx, "job-2")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "dos", records[0].Title)
}

func TestFSStore_OmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()

	s := newTestFSStore(t)
	ctx := context.Background()
	record := crawler.ArticleRecord{
		Title:     "mínimo",
		URL:       "https://example.do/minimo",
		Content:   "Texto",
		Source:    "Diario Libre",
		ScrapedAt: "2024-01-15T10:00:00Z",
	}
	require.NoError(t, s.Append(ctx, "job-1", record))

	records, err := s.ListJob(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, record, records[0])
	require.Empty(t, records[0].Author)
	require.Nil(t, records[0].Tags)
}
