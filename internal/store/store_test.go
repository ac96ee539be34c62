package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prensa-rd/newscrawler/internal/crawler"
)

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	record := crawler.ArticleRecord{
		Title:         "Titular",
		Category:      "Economía",
		Source:        "Diario Libre",
		PublishedDate: "2024-01-15T10:30:00-04:00",
	}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"category substring case-insensitive", Filter{Category: "econo"}, true},
		{"category mismatch", Filter{Category: "deportes"}, false},
		{"source substring", Filter{Source: "diario"}, true},
		{"source mismatch", Filter{Source: "nacional"}, false},
		{"date from inclusive", Filter{DateFrom: "2024-01-15"}, true},
		{"date from excludes earlier", Filter{DateFrom: "2024-01-16"}, false},
		{"date to covers whole day", Filter{DateTo: "2024-01-15"}, true},
		{"date to excludes later", Filter{DateTo: "2024-01-14"}, false},
		{"range", Filter{DateFrom: "2024-01-01", DateTo: "2024-01-31"}, true},
		{"all criteria", Filter{Category: "Economía", Source: "Libre", DateFrom: "2024-01-15"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, tc.filter.Matches(record))
		})
	}
}

func TestFilter_EmptyFieldsNeverMatchCriteria(t *testing.T) {
	t.Parallel()

	record := crawler.ArticleRecord{Title: "Sin categoría"}
	require.False(t, Filter{Category: "economia"}.Matches(record))
	require.False(t, Filter{Source: "diario"}.Matches(record))
	// An empty published date sorts before any DateFrom.
	require.False(t, Filter{DateFrom: "2024-01-01"}.Matches(record))
}

func TestCountsByCategory_OrderAndTies(t *testing.T) {
	t.Parallel()

	records := []crawler.ArticleRecord{
		{Category: "Deportes"},
		{Category: "Economía"},
		{Category: "Deportes"},
		{Category: "Actualidad"},
		{Category: "Economía"},
		{Category: ""},
	}
	counts := countsByCategory(records)
	require.Equal(t, []CategoryCount{
		{Category: "Deportes", Count: 2},
		{Category: "Economía", Count: 2},
		{Category: "Actualidad", Count: 1},
	}, counts)
}

func TestCountsBySource_SkipsEmpty(t *testing.T) {
	t.Parallel()

	records := []crawler.ArticleRecord{
		{Source: "Diario Libre"},
		{Source: ""},
		{Source: "Diario Libre"},
		{Source: "El Nacional"},
	}
	counts := countsBySource(records)
	require.Equal(t, []SourceCount{
		{Source: "Diario Libre", Count: 2},
		{Source: "El Nacional", Count: 1},
	}, counts)
}

func TestLimitRecords(t *testing.T) {
	t.Parallel()

	records := []crawler.ArticleRecord{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	require.Len(t, limitRecords(records, 2), 2)
	require.Len(t, limitRecords(records, 0), 3)
	require.Len(t, limitRecords(records, 10), 3)
}
