package sites

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Default politeness knobs shared by the friendlier sites.
const (
	defaultDelay          = 1 * time.Second
	defaultConcurrency    = 2
	defaultRetryMax       = 3
	defaultThrottleTarget = 1.0
	defaultTimeout        = 15 * time.Second
)

// defaultRetryCodes mirrors the transient statuses worth retrying against
// newspaper CDNs.
func defaultRetryCodes() []int {
	return []int{500, 502, 503, 504, 522, 524, 408, 429}
}

var summaryChain = []Strategy{
	Metadata("description"),
	MetaProperty("og:description"),
	MetaName("description"),
}

// DiarioLibre crawls diariolibre.com. Articles carry a /YYYY/MM/DD/ date in
// the URL path.
func DiarioLibre() *Profile {
	return &Profile{
		Name:           "diariolibre",
		Source:         "Diario Libre",
		BaseURL:        "https://www.diariolibre.com",
		AllowedDomains: []string{"diariolibre.com"},
		Sections: []string{
			"/",
			"/ultima-hora",
			"/actualidad",
			"/actualidad/nacional",
			"/actualidad/ciudad",
			"/actualidad/educacion",
			"/actualidad/salud",
			"/actualidad/justicia",
			"/actualidad/politica",
			"/actualidad/sucesos",
			"/actualidad/a-fondo",
			"/actualidad/dialogo-libre",
			"/politica",
			"/politica/partidos",
			"/politica/jce",
			"/politica/tse",
			"/politica/congreso-nacional",
			"/politica/gobierno",
			"/politica/nacional",
			"/politica/internacional",
			"/mundo",
			"/mundo/estados-unidos",
			"/mundo/america-latina",
			"/mundo/haiti",
			"/mundo/espana",
			"/mundo/europa",
			"/mundo/canada",
			"/mundo/medio-oriente",
			"/mundo/asia",
			"/mundo/africa",
			"/economia",
			"/economia/finanzas",
			"/economia/turismo",
			"/economia/agro",
			"/economia/empleo",
			"/economia/negocios",
			"/economia/energia",
			"/deportes",
			"/deportes/baloncesto",
			"/deportes/futbol",
			"/deportes/beisbol",
			"/deportes/motor",
			"/deportes/golf",
			"/revista",
			"/opinion",
			"/planeta",
			"/usa",
		},
		ListingLinkSelector: "a[href]",
		PaginationSelector:  `a.next, a[rel="next"], .pagination a`,
		Article: ArticleRule{
			Pattern: regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
		},
		CategoryFromURL: CategoryRule{
			Mode:        CategoryFirstSegment,
			MinSegments: 2,
		},
		Fields: FieldRules{
			Title: []Strategy{Text("h1"), Metadata("headline")},
			Author: []Strategy{
				MetadataAuthor(),
				MetaName("ArticleAuthors"),
				Text(`a[href*="/autor/"]`),
			},
			Date:     []Strategy{Metadata("datePublished"), Attr("time", "datetime")},
			Summary:  summaryChain,
			Category: []Strategy{TextLast(".breadcrumb a")},
			Image:    []Strategy{MetaProperty("og:image"), MetadataImage()},
			Tags:     []TagStrategy{{Kind: TagsLinkText, Selector: `a[href*="/tags/"]`}},
			ContentSelectors: []string{
				".detail-body p",
				"article p",
			},
		},
		Politeness: Politeness{
			Delay:            defaultDelay,
			Concurrency:      defaultConcurrency,
			RetryMax:         defaultRetryMax,
			RetryStatusCodes: defaultRetryCodes(),
			ThrottleTarget:   defaultThrottleTarget,
			CacheEnabled:     true,
			RequestTimeout:   defaultTimeout,
		},
	}
}

// ListinDiario crawls listindiario.com. Article URLs end with
// /YYYYMMDD/slug_ID.html and the site serves complete JSON-LD, which leads
// the extraction chains.
func ListinDiario() *Profile {
	return &Profile{
		Name:           "listindiario",
		Source:         "Listín Diario",
		BaseURL:        "https://listindiario.com",
		AllowedDomains: []string{"listindiario.com"},
		Sections: []string{
			"/",
			"/la-republica",
			"/economia",
			"/deportes",
			"/la-vida",
			"/entretenimiento",
			"/el-deporte",
			"/las-mundiales",
			"/puntos-de-vista",
		},
		ListingLinkSelector: "a[href]",
		Article: ArticleRule{
			Pattern: regexp.MustCompile(`/\d{8}/.*\.html$`),
		},
		CategoryFromURL: CategoryRule{
			Mode:        CategoryFirstSegment,
			MinSegments: 1,
			TitleCase:   true,
		},
		Fields: FieldRules{
			Title: []Strategy{Metadata("headline"), Text("h1")},
			Author: []Strategy{
				MetadataAuthor(),
				Text(`a[href*="/autor/"]`),
			},
			Date:    []Strategy{Metadata("datePublished"), Attr("time", "datetime")},
			Summary: summaryChain,
			Category: []Strategy{
				Metadata("articleSection"),
				MetaName("category"),
			},
			Image: []Strategy{MetaProperty("og:image"), MetadataImage()},
			Tags: []TagStrategy{
				{Kind: TagsKeywords},
				{Kind: TagsLinkText, Selector: `a[href*="/tag/"]`},
			},
			ContentSelectors: []string{
				".c-article__closed p",
				".c-article__subs p",
				"article p",
			},
		},
		Politeness: Politeness{
			Delay:            defaultDelay,
			Concurrency:      defaultConcurrency,
			RetryMax:         defaultRetryMax,
			RetryStatusCodes: defaultRetryCodes(),
			ThrottleTarget:   defaultThrottleTarget,
			CacheEnabled:     true,
			RequestTimeout:   defaultTimeout,
		},
	}
}

// ElNacional crawls elnacional.com.do, a WordPress site. Articles have no
// URL pattern, so recognition is a negative list of known non-article paths.
func ElNacional() *Profile {
	return &Profile{
		Name:           "elnacional",
		Source:         "El Nacional",
		BaseURL:        "https://elnacional.com.do",
		AllowedDomains: []string{"elnacional.com.do"},
		Sections: []string{
			"/",
			"/secciones/actualidad/",
			"/secciones/deportes/",
			"/secciones/opinion/",
			"/secciones/economia/",
			"/secciones/mundo/",
			"/secciones/que-pasa/",
			"/secciones/reportajes/",
			"/secciones/semana/",
			"/secciones/pagina-dos/",
		},
		ListingLinkSelector: "article a, .entry-title a, h2 a, h3 a, .wp-block-post-template a",
		PaginationSelector:  `a.next, a[rel="next"]`,
		Article: ArticleRule{
			SkipSegments: []string{
				"secciones/", "author/", "tag/", "page/", "wp-",
				"wp-content/", "wp-admin/", "feed/", "#",
			},
		},
		CategoryFromURL: CategoryRule{
			Mode:      CategoryAfterPrefix,
			Prefix:    "secciones",
			TitleCase: true,
		},
		Fields: FieldRules{
			Title: []Strategy{
				Text("h1"),
				Metadata("headline"),
				MetaProperty("og:title"),
			},
			Author: []Strategy{
				MetadataAuthor(),
				MetaName("author"),
				Text(`a[href*="/author/"]`),
			},
			Date: []Strategy{
				Metadata("datePublished"),
				MetaProperty("article:published_time"),
				Attr("time", "datetime"),
			},
			Summary: summaryChain,
			Category: []Strategy{
				MetaProperty("article:section"),
				Metadata("articleSection"),
			},
			Image: []Strategy{
				MetaProperty("og:image"),
				Attr(".entry-content img", "src"),
			},
			Tags: []TagStrategy{
				{Kind: TagsMetaAll, Selector: `meta[property="article:tag"]`},
				{Kind: TagsKeywords},
				{Kind: TagsLinkText, Selector: `a[rel="tag"]`},
			},
			ContentSelectors: []string{
				".entry-content p",
				"article p",
			},
		},
		Politeness: Politeness{
			Delay:            defaultDelay,
			Concurrency:      defaultConcurrency,
			RetryMax:         defaultRetryMax,
			RetryStatusCodes: defaultRetryCodes(),
			ThrottleTarget:   defaultThrottleTarget,
			CacheEnabled:     true,
			RequestTimeout:   defaultTimeout,
		},
	}
}

// ElNuevoDiario crawls elnuevodiario.com.do. The site rate-limits
// aggressively, so its politeness block is materially stricter: slower
// delay, one request at a time, more retries, caching off.
func ElNuevoDiario() *Profile {
	return &Profile{
		Name:           "elnuevodiario",
		Source:         "El Nuevo Diario",
		BaseURL:        "https://elnuevodiario.com.do",
		AllowedDomains: []string{"elnuevodiario.com.do"},
		Sections: []string{
			"/",
			"/nacionales/",
			"/politica/",
			"/economia/",
			"/deportes/",
			"/internacionales/",
			"/opinion/",
			"/editorial/",
			"/salud/",
			"/denuncias/",
			"/toga/",
			"/buenas-noticias/",
			"/sociales/",
			"/medio-ambiente/",
			"/sostenibilidad/",
			"/novedades/",
			"/viral/",
			"/new-york/",
			"/sabores/",
			"/mundo-otaku/",
		},
		ListingLinkSelector: ".noticia-principal a.title, .noticia-regular a.title, " +
			".noticia-opinion a.title, article a, .entry-title a, h2 a, h3 a",
		PaginationSelector: `a.next, a[rel="next"]`,
		Article: ArticleRule{
			SkipSegments: []string{"page/", "/author/", "/tag/", "/wp-"},
			SkipSections: true,
			SkipQueried:  true,
		},
		Fields: FieldRules{
			Title: []Strategy{
				Text("h1"),
				Metadata("headline"),
				MetaProperty("og:title"),
			},
			Author: []Strategy{
				MetadataAuthor(),
				MetaName("author"),
				Text(`a[href*="/author/"]`),
			},
			Date: []Strategy{
				Metadata("datePublished"),
				MetaProperty("article:published_time"),
				Attr("time", "datetime"),
			},
			Summary: summaryChain,
			Category: []Strategy{
				MetaProperty("article:section"),
				TextLast(".breadcrumb a"),
			},
			Image: []Strategy{
				MetaProperty("og:image"),
				Attr(".entry-content img", "src"),
			},
			Tags: []TagStrategy{
				{Kind: TagsMetaAll, Selector: `meta[property="article:tag"]`},
				{Kind: TagsLinkText, Selector: `a[rel="tag"]`},
			},
			ContentSelectors: []string{
				".entry-content p",
				".post-content p",
				"article p",
			},
		},
		Politeness: Politeness{
			Delay:            3 * time.Second,
			Concurrency:      1,
			RetryMax:         5,
			RetryStatusCodes: []int{429, 500, 502, 503, 504},
			ThrottleTarget:   0.5,
			CacheEnabled:     false,
			RequestTimeout:   defaultTimeout,
		},
	}
}

// Catalogue returns every configured profile keyed by slug.
func Catalogue() map[string]*Profile {
	profiles := []*Profile{
		DiarioLibre(),
		ListinDiario(),
		ElNacional(),
		ElNuevoDiario(),
	}
	out := make(map[string]*Profile, len(profiles))
	for _, p := range profiles {
		out[p.Name] = p
	}
	return out
}

// Lookup resolves a profile by slug.
func Lookup(name string) (*Profile, error) {
	p, ok := Catalogue()[name]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (known: %v)", name, Names())
	}
	return p, nil
}

// Names lists the configured profile slugs, sorted.
func Names() []string {
	catalogue := Catalogue()
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
