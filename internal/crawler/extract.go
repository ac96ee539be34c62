package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// Extract applies the profile's ordered extraction strategy chains to a
// fetched article page and returns an unvalidated Candidate. Each field
// tries its strategies left to right; the first non-empty value wins.
// Extraction never fails a page: a missing or malformed source simply
// yields an empty field.
func Extract(pageURL string, body []byte, profile *sites.Profile) (Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Candidate{}, fmt.Errorf("parse article html: %w", err)
	}

	meta := findArticleMetadata(doc)
	rules := profile.Fields

	candidate := Candidate{
		URL:           pageURL,
		Title:         evalChain(doc, meta, rules.Title),
		Author:        evalChain(doc, meta, rules.Author),
		PublishedDate: evalChain(doc, meta, rules.Date),
		Summary:       evalChain(doc, meta, rules.Summary),
		Content:       extractContent(doc, rules.ContentSelectors),
		ImageURL:      evalChain(doc, meta, rules.Image),
		Tags:          extractTags(doc, meta, rules.Tags),
		Source:        profile.Source,
	}

	candidate.Category = evalChain(doc, meta, rules.Category)
	if candidate.Category == "" {
		candidate.Category = profile.CategoryFromURL.FromURL(pageURL)
	}

	return candidate, nil
}

// evalChain evaluates one ordered strategy list. Strategies are total:
// each returns a value or empty, never an error.
func evalChain(doc *goquery.Document, meta articleMetadata, chain []sites.Strategy) string {
	for _, strategy := range chain {
		if v := evalStrategy(doc, meta, strategy); v != "" {
			return v
		}
	}
	return ""
}

func evalStrategy(doc *goquery.Document, meta articleMetadata, s sites.Strategy) string {
	switch s.Kind {
	case sites.StrategyMetadata:
		return meta.String(s.Key)
	case sites.StrategyMetadataAuthor:
		return meta.AuthorName()
	case sites.StrategyMetadataImage:
		return meta.ImageURL()
	case sites.StrategyText:
		return strings.TrimSpace(doc.Find(s.Key).First().Text())
	case sites.StrategyTextLast:
		return strings.TrimSpace(doc.Find(s.Key).Last().Text())
	case sites.StrategyAttr:
		value, _ := doc.Find(s.Key).First().Attr(s.Attr)
		return strings.TrimSpace(value)
	}
	return ""
}

// extractContent concatenates the text of all paragraphs under the first
// selector scope that yields anything. Paragraph texts are whitespace
// normalized and joined with single spaces.
func extractContent(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := collapseSpace(sel.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, " ")
		}
	}
	return ""
}

// extractTags evaluates the tags chain: the first step yielding at least
// one tag wins; order within a step is document order.
func extractTags(doc *goquery.Document, meta articleMetadata, chain []sites.TagStrategy) []string {
	for _, strategy := range chain {
		var tags []string
		switch strategy.Kind {
		case sites.TagsMetaAll:
			doc.Find(strategy.Selector).Each(func(_ int, sel *goquery.Selection) {
				if content, ok := sel.Attr("content"); ok {
					if tag := strings.TrimSpace(content); tag != "" {
						tags = append(tags, tag)
					}
				}
			})
		case sites.TagsKeywords:
			tags = splitKeywords(meta.Keywords())
		case sites.TagsLinkText:
			doc.Find(strategy.Selector).Each(func(_ int, sel *goquery.Selection) {
				if tag := strings.TrimSpace(sel.Text()); tag != "" {
					tags = append(tags, tag)
				}
			})
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return nil
}

func splitKeywords(keywords string) []string {
	if keywords == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(keywords, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
