package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// PageLinks is the outcome of link discovery on one listing page. The lists
// may contain duplicates; deduplication belongs to the Frontier.
type PageLinks struct {
	Articles []string
	Listings []string
}

// ExtractLinks discovers candidate article links and next-page listing links
// on a fetched listing page. Every href is resolved against the page's own
// URL; links outside the profile's allowed domains are discarded.
func ExtractLinks(pageURL string, body []byte, profile *sites.Profile) (PageLinks, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return PageLinks{}, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageLinks{}, fmt.Errorf("parse listing html: %w", err)
	}

	var links PageLinks
	doc.Find(profile.ListingLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		u := resolveHref(base, sel, profile)
		if u == nil {
			return
		}
		if profile.Article.Matches(u, profile) {
			links.Articles = append(links.Articles, u.String())
		}
	})

	if profile.PaginationSelector != "" {
		doc.Find(profile.PaginationSelector).Each(func(_ int, sel *goquery.Selection) {
			if u := resolveHref(base, sel, profile); u != nil {
				links.Listings = append(links.Listings, u.String())
			}
		})
	}

	return links, nil
}

// resolveHref absolutizes one anchor's href and applies the domain filter.
// Returns nil for empty, malformed, non-HTTP, or off-domain links.
func resolveHref(base *url.URL, sel *goquery.Selection, profile *sites.Profile) *url.URL {
	href, ok := sel.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	u := base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	if !profile.AllowsDomain(u.Hostname()) {
		return nil
	}
	return u
}
