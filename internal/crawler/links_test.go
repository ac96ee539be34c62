package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

const diarioLibreListing = `<!DOCTYPE html>
<html><body>
<nav>
  <a href="/actualidad">Actualidad</a>
  <a href="https://twitter.com/diariolibre">Twitter</a>
</nav>
<main>
  <a href="/actualidad/2024/01/15/primer-titular/123">Primer titular</a>
  <a href="https://www.diariolibre.com/economia/2024/01/15/segundo-titular/456">Segundo titular</a>
  <a href="https://otrositio.com/2024/01/15/ajeno/1">Fuera de dominio</a>
  <a href="#comentarios">Comentarios</a>
  <a href="mailto:redaccion@diariolibre.com">Escríbenos</a>
</main>
<div class="pagination">
  <a href="/actualidad?page=2">Siguiente</a>
</div>
</body></html>`

func TestExtractLinks_DiarioLibre(t *testing.T) {
	t.Parallel()

	p := sites.DiarioLibre()
	links, err := ExtractLinks("https://www.diariolibre.com/actualidad", []byte(diarioLibreListing), p)
	require.NoError(t, err)

	require.Equal(t, []string{
		"https://www.diariolibre.com/actualidad/2024/01/15/primer-titular/123",
		"https://www.diariolibre.com/economia/2024/01/15/segundo-titular/456",
	}, links.Articles)
	require.Equal(t, []string{
		"https://www.diariolibre.com/actualidad?page=2",
	}, links.Listings)
}

func TestExtractLinks_OffDomainAndNonHTTPDiscarded(t *testing.T) {
	t.Parallel()

	p := sites.DiarioLibre()
	body := `<html><body>
		<a href="https://otrositio.com/2024/01/15/x/1">x</a>
		<a href="javascript:void(0)">js</a>
		<a href="ftp://diariolibre.com/2024/01/15/x/1">ftp</a>
	</body></html>`
	links, err := ExtractLinks("https://www.diariolibre.com/", []byte(body), p)
	require.NoError(t, err)
	require.Empty(t, links.Articles)
	require.Empty(t, links.Listings)
}

func TestExtractLinks_RelativeHrefsResolveAgainstPage(t *testing.T) {
	t.Parallel()

	p := sites.ListinDiario()
	body := `<html><body>
		<a href="20240115/titular_1.html">Titular</a>
	</body></html>`
	links, err := ExtractLinks("https://listindiario.com/la-republica/", []byte(body), p)
	require.NoError(t, err)
	require.Equal(t,
		[]string{"https://listindiario.com/la-republica/20240115/titular_1.html"},
		links.Articles,
	)
}

func TestExtractLinks_NoPaginationSelectorMeansNoListings(t *testing.T) {
	t.Parallel()

	p := sites.ListinDiario()
	require.Empty(t, p.PaginationSelector)
	body := `<html><body><a class="next" href="/la-republica?page=2">Next</a></body></html>`
	links, err := ExtractLinks("https://listindiario.com/la-republica", []byte(body), p)
	require.NoError(t, err)
	require.Empty(t, links.Listings)
}

func TestExtractLinks_DuplicatesSurviveToFrontier(t *testing.T) {
	t.Parallel()

	// Discovery does not dedup; the frontier owns at-most-once admission.
	p := sites.DiarioLibre()
	body := `<html><body>
		<a href="/x/2024/01/15/repetido/1">a</a>
		<a href="/x/2024/01/15/repetido/1">b</a>
	</body></html>`
	links, err := ExtractLinks("https://www.diariolibre.com/", []byte(body), p)
	require.NoError(t, err)
	require.Len(t, links.Articles, 2)
}
