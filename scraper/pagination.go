package scraper

import (
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jferreira/jennifer-scraper/parser"
)

// Pagination locators, ordered by precedence; do not reorder.
var nextLinkSelectors = []string{
	"ul.pagination li.active + li a",
	".pagination .next a",
	"a.pagination__next",
	`a[rel="next"]`,
	".next-page a",
	".pagination-next a",
	"a.next",
	"a.next-page",
	".pagination .next",
}

// Anchor scopes checked for a visible "next" label when none of the
// structural locators yields an href.
var nextTextScopes = []string{".pagination a", "a"}

var pageParam = regexp.MustCompile(`page=(\d+)`)

// nextPageURL resolves the following listing page: structural locators
// first, then anchors whose trimmed text equals "next" case-insensitively,
// then a numeric increment of a page= query component on the current URL.
// ok=false means the crawl reached the last page.
func nextPageURL(base *url.URL, currentURL string, doc *goquery.Document) (string, bool) {
	for _, selector := range nextLinkSelectors {
		if href := doc.Find(selector).First().AttrOr("href", ""); href != "" {
			next := parser.ResolveURL(base, href)
			slog.Debug("next page located", "locator", selector, "url", next)
			return next, true
		}
	}

	for _, scope := range nextTextScopes {
		var candidate *goquery.Selection
		doc.Find(scope).EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
			if strings.EqualFold(strings.TrimSpace(anchor.Text()), "next") {
				candidate = anchor
				return false
			}
			return true
		})
		if candidate == nil {
			continue
		}
		if href := candidate.AttrOr("href", ""); href != "" {
			next := parser.ResolveURL(base, href)
			slog.Debug("next page located by label", "scope", scope, "url", next)
			return next, true
		}
	}

	if match := pageParam.FindStringSubmatch(currentURL); match != nil {
		page, err := strconv.Atoi(match[1])
		if err == nil {
			next := pageParam.ReplaceAllString(currentURL, "page="+strconv.Itoa(page+1))
			slog.Debug("next page generated from page parameter", "url", next)
			return next, true
		}
	}

	return "", false
}
