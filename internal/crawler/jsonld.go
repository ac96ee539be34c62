package crawler

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articleMetadata is the decoded schema.org block for one article page.
// Fields are union-typed in the wild (author may be a string, an object, or
// a list), so the block is kept as a raw map and coalesced per field.
type articleMetadata map[string]any

// articleTypes are the @type values recognized as article metadata.
var articleTypes = map[string]struct{}{
	"NewsArticle": {},
	"Article":     {},
}

// findArticleMetadata scans the page's ld+json script blocks for the first
// NewsArticle/Article object, unwrapping one level of list or @graph
// container. Malformed blocks are swallowed: extraction degrades to the
// later strategies rather than failing the page.
func findArticleMetadata(doc *goquery.Document) articleMetadata {
	var found articleMetadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var block any
		if err := json.Unmarshal([]byte(sel.Text()), &block); err != nil {
			return true
		}
		if meta := matchArticleBlock(block); meta != nil {
			found = meta
			return false
		}
		return true
	})
	return found
}

func matchArticleBlock(block any) articleMetadata {
	switch v := block.(type) {
	case map[string]any:
		if isArticleType(v) {
			return v
		}
		// WordPress commonly nests the article under @graph.
		if graph, ok := v["@graph"].([]any); ok {
			return matchArticleList(graph)
		}
	case []any:
		return matchArticleList(v)
	}
	return nil
}

func matchArticleList(list []any) articleMetadata {
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok && isArticleType(m) {
			return m
		}
	}
	return nil
}

func isArticleType(m map[string]any) bool {
	t, _ := m["@type"].(string)
	_, ok := articleTypes[t]
	return ok
}

// String returns the metadata field as a trimmed string, or "" when absent
// or not a string.
func (m articleMetadata) String(field string) string {
	if m == nil {
		return ""
	}
	s, _ := m[field].(string)
	return strings.TrimSpace(s)
}

// AuthorName coalesces the author field. Objects yield their name property
// (or, failing that, the last segment of an @id path); lists yield their
// first entry.
func (m articleMetadata) AuthorName() string {
	if m == nil {
		return ""
	}
	return authorName(m["author"])
}

func authorName(v any) string {
	switch author := v.(type) {
	case string:
		return strings.TrimSpace(author)
	case map[string]any:
		if name, _ := author["name"].(string); strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		// Some WordPress sites reference the author only by @id URL.
		if id, _ := author["@id"].(string); strings.Contains(id, "/") {
			segments := strings.Split(strings.Trim(id, "/"), "/")
			if len(segments) >= 1 {
				return segments[len(segments)-1]
			}
		}
	case []any:
		if len(author) > 0 {
			return authorName(author[0])
		}
	}
	return ""
}

// ImageURL coalesces the image field: a string, an object with a url, or a
// list of either.
func (m articleMetadata) ImageURL() string {
	if m == nil {
		return ""
	}
	return imageURL(m["image"])
}

func imageURL(v any) string {
	switch img := v.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		u, _ := img["url"].(string)
		return strings.TrimSpace(u)
	case []any:
		if len(img) > 0 {
			return imageURL(img[0])
		}
	}
	return ""
}

// Keywords returns the comma-joined keywords string, or "" when the field
// is absent or not a string.
func (m articleMetadata) Keywords() string {
	return m.String("keywords")
}
