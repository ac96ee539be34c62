package crawler

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(html)))
	require.NoError(t, err)
	return doc
}

func ldPage(blocks ...string) string {
	var b bytes.Buffer
	b.WriteString("<html><head>")
	for _, block := range blocks {
		fmt.Fprintf(&b, `<script type="application/ld+json">%s</script>`, block)
	}
	b.WriteString("</head><body></body></html>")
	return b.String()
}

func TestFindArticleMetadata_PlainNewsArticle(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, ldPage(`{"@type":"NewsArticle","headline":"Titular"}`))
	meta := findArticleMetadata(doc)
	require.NotNil(t, meta)
	require.Equal(t, "Titular", meta.String("headline"))
}

func TestFindArticleMetadata_GraphUnwrap(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, ldPage(
		`{"@graph":[{"@type":"WebPage"},{"@type":"Article","headline":"Dentro del grafo"}]}`))
	meta := findArticleMetadata(doc)
	require.NotNil(t, meta)
	require.Equal(t, "Dentro del grafo", meta.String("headline"))
}

func TestFindArticleMetadata_ListUnwrap(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, ldPage(
		`[{"@type":"BreadcrumbList"},{"@type":"NewsArticle","headline":"En lista"}]`))
	meta := findArticleMetadata(doc)
	require.NotNil(t, meta)
	require.Equal(t, "En lista", meta.String("headline"))
}

func TestFindArticleMetadata_MalformedBlockSkipped(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, ldPage(
		`{"@type":"NewsArticle","headline": truncated`,
		`{"@type":"NewsArticle","headline":"El bueno"}`,
	))
	meta := findArticleMetadata(doc)
	require.NotNil(t, meta)
	require.Equal(t, "El bueno", meta.String("headline"))
}

func TestFindArticleMetadata_NonArticleTypesIgnored(t *testing.T) {
	t.Parallel()

	doc := docFromHTML(t, ldPage(`{"@type":"Organization","name":"Diario"}`))
	require.Nil(t, findArticleMetadata(doc))
}

func TestArticleMetadata_AuthorUnions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		block string
		want  string
	}{
		{"string", `{"@type":"NewsArticle","author":"Juan Pérez"}`, "Juan Pérez"},
		{"object name", `{"@type":"NewsArticle","author":{"name":"María Gómez"}}`, "María Gómez"},
		{"object id path", `{"@type":"NewsArticle","author":{"@id":"https://x.do/author/redaccion/"}}`, "redaccion"},
		{"list first", `{"@type":"NewsArticle","author":[{"name":"Primera"},{"name":"Segunda"}]}`, "Primera"},
		{"absent", `{"@type":"NewsArticle"}`, ""},
		{"number ignored", `{"@type":"NewsArticle","author":7}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			meta := findArticleMetadata(docFromHTML(t, ldPage(tc.block)))
			require.NotNil(t, meta)
			require.Equal(t, tc.want, meta.AuthorName())
		})
	}
}

func TestArticleMetadata_ImageUnions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		block string
		want  string
	}{
		{"string", `{"@type":"NewsArticle","image":"https://x.do/a.jpg"}`, "https://x.do/a.jpg"},
		{"object url", `{"@type":"NewsArticle","image":{"url":"https://x.do/b.jpg"}}`, "https://x.do/b.jpg"},
		{"list first", `{"@type":"NewsArticle","image":["https://x.do/c.jpg","https://x.do/d.jpg"]}`, "https://x.do/c.jpg"},
		{"absent", `{"@type":"NewsArticle"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			meta := findArticleMetadata(docFromHTML(t, ldPage(tc.block)))
			require.NotNil(t, meta)
			require.Equal(t, tc.want, meta.ImageURL())
		})
	}
}

func TestArticleMetadata_NilReceiverIsEmpty(t *testing.T) {
	t.Parallel()

	var meta articleMetadata
	require.Equal(t, "", meta.String("headline"))
	require.Equal(t, "", meta.AuthorName())
	require.Equal(t, "", meta.ImageURL())
	require.Equal(t, "", meta.Keywords())
}
