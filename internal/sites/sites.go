// Package sites holds the static per-newspaper crawl profiles. A Profile is
// pure configuration: seed sections, link discovery rules, field extraction
// strategy chains, and politeness overrides. The crawl engine consults the
// profile; adding a newspaper is a configuration exercise, not new code.
package sites

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// StrategyKind identifies how a single extraction strategy resolves a field.
type StrategyKind int

const (
	// StrategyMetadata reads a plain string field from the page's structured
	// article metadata block (schema.org JSON-LD).
	StrategyMetadata StrategyKind = iota
	// StrategyMetadataAuthor reads the metadata author field, which may be a
	// string, an object with a name, or a list of either.
	StrategyMetadataAuthor
	// StrategyMetadataImage reads the metadata image field, which may be a
	// string, an object with a url, or a list of either.
	StrategyMetadataImage
	// StrategyText takes the trimmed text of the first element matching Key.
	StrategyText
	// StrategyTextLast takes the trimmed text of the last element matching Key.
	StrategyTextLast
	// StrategyAttr takes the Attr attribute of the first element matching Key.
	StrategyAttr
)

// Strategy is one step in an ordered field extraction chain. Strategies are
// total: they return the extracted value or empty, never an error.
type Strategy struct {
	Kind StrategyKind
	Key  string
	Attr string
}

// Convenience constructors keep profile declarations readable.

func Metadata(field string) Strategy       { return Strategy{Kind: StrategyMetadata, Key: field} }
func MetadataAuthor() Strategy             { return Strategy{Kind: StrategyMetadataAuthor} }
func MetadataImage() Strategy              { return Strategy{Kind: StrategyMetadataImage} }
func Text(selector string) Strategy        { return Strategy{Kind: StrategyText, Key: selector} }
func TextLast(selector string) Strategy    { return Strategy{Kind: StrategyTextLast, Key: selector} }
func Attr(selector, attr string) Strategy  { return Strategy{Kind: StrategyAttr, Key: selector, Attr: attr} }
func MetaProperty(name string) Strategy    { return Attr(fmt.Sprintf("meta[property=%q]", name), "content") }
func MetaName(name string) Strategy        { return Attr(fmt.Sprintf("meta[name=%q]", name), "content") }

// TagStrategyKind identifies how one step of the tags chain collects values.
type TagStrategyKind int

const (
	// TagsMetaAll collects the content attribute of every element matching
	// Selector (a repeated meta tag such as article:tag).
	TagsMetaAll TagStrategyKind = iota
	// TagsKeywords splits the metadata keywords string on commas.
	TagsKeywords
	// TagsLinkText collects the trimmed text of every element matching Selector.
	TagsLinkText
)

// TagStrategy is one step in the ordered tags extraction chain.
type TagStrategy struct {
	Kind     TagStrategyKind
	Selector string
}

// CategoryMode selects how a category is derived from the article URL path
// when no explicit category field was extracted.
type CategoryMode int

const (
	// CategoryNone disables URL-based category derivation.
	CategoryNone CategoryMode = iota
	// CategoryFirstSegment uses the first path segment.
	CategoryFirstSegment
	// CategoryAfterPrefix uses the path segment that follows Prefix.
	CategoryAfterPrefix
)

// CategoryRule derives a category from an article URL. The casing mode is
// deliberately site-specific: the source sites differ here and the behavior
// of each is preserved rather than unified.
type CategoryRule struct {
	Mode CategoryMode
	// Prefix is the known section path segment for CategoryAfterPrefix.
	Prefix string
	// MinSegments is the minimum number of path segments required before the
	// rule applies (CategoryFirstSegment only).
	MinSegments int
	// TitleCase turns hyphens into spaces and title-cases every word when
	// true; otherwise only the first letter is upper-cased.
	TitleCase bool
}

// FromURL applies the rule to rawURL, returning the derived category or "".
func (r CategoryRule) FromURL(rawURL string) string {
	if r.Mode == CategoryNone {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := splitPath(u.Path)
	switch r.Mode {
	case CategoryFirstSegment:
		if len(segments) == 0 || len(segments) < r.MinSegments {
			return ""
		}
		return r.caseSegment(segments[0])
	case CategoryAfterPrefix:
		for i, seg := range segments {
			if strings.EqualFold(seg, r.Prefix) && i+1 < len(segments) {
				return r.caseSegment(segments[i+1])
			}
		}
	}
	return ""
}

func (r CategoryRule) caseSegment(seg string) string {
	if r.TitleCase {
		words := strings.Split(strings.ReplaceAll(seg, "-", " "), " ")
		for i, w := range words {
			words[i] = capitalize(w)
		}
		return strings.Join(words, " ")
	}
	return capitalize(seg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + s[size:]
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// ArticleRule decides whether a discovered link points at an article page.
// Either a URL pattern is declared (date or ID shapes in the path) or a
// negative list of known non-article path segments.
type ArticleRule struct {
	// Pattern, when set, must match the full normalized URL.
	Pattern *regexp.Regexp
	// SkipSegments lists path substrings that mark a link as a non-article
	// (section indexes, author pages, tag pages, pagination, CMS internals).
	SkipSegments []string
	// SkipSections excludes links whose full trimmed path equals one of the
	// profile's configured section paths.
	SkipSections bool
	// SkipQueried excludes links carrying a query string.
	SkipQueried bool
}

// Matches reports whether u is recognized as an article link for profile p.
func (r ArticleRule) Matches(u *url.URL, p *Profile) bool {
	if r.Pattern != nil {
		return r.Pattern.MatchString(u.String())
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return false
	}
	if r.SkipQueried && u.RawQuery != "" {
		return false
	}
	for _, seg := range r.SkipSegments {
		if strings.Contains(path, seg) {
			return false
		}
	}
	if r.SkipSections {
		for _, section := range p.Sections {
			if path == strings.Trim(section, "/") {
				return false
			}
		}
	}
	return true
}

// Politeness is the per-site rate limiting and retry policy.
type Politeness struct {
	// Delay is the baseline inter-request delay per domain.
	Delay time.Duration
	// Concurrency caps in-flight requests per domain.
	Concurrency int
	// RetryMax bounds retries of transient fetch failures per URL.
	RetryMax int
	// RetryStatusCodes are the HTTP statuses treated as transient.
	RetryStatusCodes []int
	// ThrottleTarget is the desired average concurrency the adaptive
	// throttle steers toward; lower values widen the delay.
	ThrottleTarget float64
	// CacheEnabled allows the transport to reuse cached responses. The
	// stricter sites disable it.
	CacheEnabled bool
	// RequestTimeout bounds every single fetch attempt.
	RequestTimeout time.Duration
}

// FieldRules holds the ordered extraction strategy chains for every article
// field. Chains are evaluated left to right; the first non-empty value wins.
type FieldRules struct {
	Title    []Strategy
	Author   []Strategy
	Date     []Strategy
	Summary  []Strategy
	Category []Strategy
	Image    []Strategy
	Tags     []TagStrategy
	// ContentSelectors are paragraph scopes tried in order until one yields
	// text; the last entry is the generic fallback.
	ContentSelectors []string
}

// Profile is the static configuration for one newspaper. Profiles are never
// mutated at runtime.
type Profile struct {
	// Name is the stable slug used in the API and CLI ("diariolibre").
	Name string
	// Source is the fixed human-readable label stamped on every record.
	Source string
	// BaseURL is the scheme+host used to absolutize the section paths.
	BaseURL string
	// AllowedDomains restricts discovery to these hosts (subdomains included).
	AllowedDomains []string
	// Sections are the seed listing paths, absolutized against BaseURL.
	Sections []string
	// ListingLinkSelector finds candidate links on a listing page.
	ListingLinkSelector string
	// PaginationSelector finds next-page links; empty disables pagination.
	PaginationSelector string
	Article            ArticleRule
	CategoryFromURL    CategoryRule
	Fields             FieldRules
	Politeness         Politeness
}

// SeedURLs returns the absolute seed section URLs for the profile.
func (p *Profile) SeedURLs() []string {
	seeds := make([]string, 0, len(p.Sections))
	for _, section := range p.Sections {
		seeds = append(seeds, strings.TrimSuffix(p.BaseURL, "/")+section)
	}
	return seeds
}

// AllowsDomain reports whether host belongs to the profile's allowed domains.
func (p *Profile) AllowsDomain(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range p.AllowedDomains {
		domain = strings.ToLower(domain)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
