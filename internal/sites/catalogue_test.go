package sites

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestCatalogue_ContainsAllSites(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"diariolibre", "elnacional", "elnuevodiario", "listindiario"},
		Names(),
	)
}

func TestLookup_UnknownSite(t *testing.T) {
	t.Parallel()

	_, err := Lookup("nytimes")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown site")
}

func TestProfile_SeedURLs(t *testing.T) {
	t.Parallel()

	p := ListinDiario()
	seeds := p.SeedURLs()
	require.Contains(t, seeds, "https://listindiario.com/")
	require.Contains(t, seeds, "https://listindiario.com/economia")
}

func TestProfile_AllowsDomain(t *testing.T) {
	t.Parallel()

	p := DiarioLibre()
	require.True(t, p.AllowsDomain("diariolibre.com"))
	require.True(t, p.AllowsDomain("www.diariolibre.com"))
	require.True(t, p.AllowsDomain("WWW.DIARIOLIBRE.COM"))
	require.False(t, p.AllowsDomain("eldiariolibre.com"))
	require.False(t, p.AllowsDomain("example.com"))
}

func TestArticleRule_DiarioLibre_DatePattern(t *testing.T) {
	t.Parallel()

	p := DiarioLibre()
	require.True(t, p.Article.Matches(
		mustParse(t, "https://www.diariolibre.com/actualidad/2024/01/15/titular-importante/123"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://www.diariolibre.com/actualidad/nacional"), p))
}

func TestArticleRule_ListinDiario_DatePattern(t *testing.T) {
	t.Parallel()

	p := ListinDiario()
	require.True(t, p.Article.Matches(
		mustParse(t, "https://listindiario.com/la-republica/gobierno/20240115/titular_794512.html"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://listindiario.com/la-republica"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://listindiario.com/20240115/galeria"), p))
}

func TestArticleRule_ElNacional_SkipSegments(t *testing.T) {
	t.Parallel()

	p := ElNacional()
	require.True(t, p.Article.Matches(
		mustParse(t, "https://elnacional.com.do/gobierno-anuncia-nuevas-medidas/"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnacional.com.do/secciones/actualidad/"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnacional.com.do/author/redaccion/"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnacional.com.do/tag/elecciones/"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnacional.com.do/"), p))
}

func TestArticleRule_ElNuevoDiario_SkipSectionsAndQueries(t *testing.T) {
	t.Parallel()

	p := ElNuevoDiario()
	require.True(t, p.Article.Matches(
		mustParse(t, "https://elnuevodiario.com.do/gobierno-anuncia-presupuesto-2026/"), p))
	// Configured section indexes are not articles.
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnuevodiario.com.do/nacionales/"), p))
	// Links carrying a query string are never articles.
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnuevodiario.com.do/algo-paso/?share=twitter"), p))
	require.False(t, p.Article.Matches(
		mustParse(t, "https://elnuevodiario.com.do/page/2/"), p))
}

func TestCategoryRule_FirstSegment(t *testing.T) {
	t.Parallel()

	rule := DiarioLibre().CategoryFromURL
	require.Equal(t, "Economia",
		rule.FromURL("https://www.diariolibre.com/economia/finanzas/article-1"))
	// Single-segment paths carry no category.
	require.Equal(t, "",
		rule.FromURL("https://www.diariolibre.com/portada"))
}

func TestCategoryRule_FirstSegmentTitleCase(t *testing.T) {
	t.Parallel()

	rule := ListinDiario().CategoryFromURL
	require.Equal(t, "La Republica",
		rule.FromURL("https://listindiario.com/la-republica/20240115/titular_1.html"))
}

func TestCategoryRule_AfterPrefix(t *testing.T) {
	t.Parallel()

	rule := ElNacional().CategoryFromURL
	require.Equal(t, "Que Pasa",
		rule.FromURL("https://elnacional.com.do/secciones/que-pasa/algo-curioso/"))
	// No prefix segment means no category.
	require.Equal(t, "",
		rule.FromURL("https://elnacional.com.do/un-articulo-cualquiera/"))
}

func TestCategoryRule_None(t *testing.T) {
	t.Parallel()

	rule := CategoryRule{Mode: CategoryNone}
	require.Equal(t, "", rule.FromURL("https://example.com/economia/articulo"))
}

func TestPoliteness_ElNuevoDiarioIsStricter(t *testing.T) {
	t.Parallel()

	strict := ElNuevoDiario().Politeness
	relaxed := DiarioLibre().Politeness

	require.Greater(t, strict.Delay, relaxed.Delay)
	require.Equal(t, 1, strict.Concurrency)
	require.Equal(t, 5, strict.RetryMax)
	require.False(t, strict.CacheEnabled)
	require.True(t, relaxed.CacheEnabled)
	require.Less(t, strict.ThrottleTarget, relaxed.ThrottleTarget)
	require.Contains(t, strict.RetryStatusCodes, 429)
}
