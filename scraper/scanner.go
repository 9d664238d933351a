package scraper

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jferreira/jennifer-scraper/parser"
)

// Listing-page locators collected from the site's template variants,
// ordered by precedence; do not reorder.
var productCardSelectors = []string{
	"div.product-layout div.product-thumb",
	".product-grid .product-card",
	".collection-grid .grid-product",
	".products-grid .product-item",
	".product-list .product",
	"ul.products li.product",
	".grid-product__content",
	"article[data-product]",
	".product-item",
	".grid__item",
	".product-card",
}

var cardLinkSelectors = []string{
	"div.caption h4 a",
	"a.product-title",
	"h2.product-title a",
	"a.grid-product__link",
	".product-name a",
	"a.product-link",
	"h2 a",
	"a.product-item-link",
	".product-card__title a",
	`a[href*="product"]`,
	"a",
}

// Scanner discovers product detail links on listing pages.
type Scanner struct {
	fetcher *Fetcher
	base    *url.URL
}

// NewScanner builds a scanner resolving hrefs against baseURL.
func NewScanner(fetcher *Fetcher, baseURL string) (*Scanner, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Scanner{fetcher: fetcher, base: base}, nil
}

// Scan fetches a listing page and returns unique product links in
// discovery order. Fetch or parse failures yield an empty result; the
// crawl moves on.
func (s *Scanner) Scan(listingURL string) []string {
	html, err := s.fetcher.Fetch(listingURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Error("parse listing page", "url", listingURL, "error", err)
		return nil
	}
	return s.ScanDocument(doc)
}

// ScanDocument extracts product links from an already parsed listing page.
func (s *Scanner) ScanDocument(doc *goquery.Document) []string {
	cards := findCards(doc)

	var links []string
	seen := make(map[string]struct{})
	add := func(href string) {
		full := parser.ResolveURL(s.base, href)
		if full == "" {
			return
		}
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	}

	if cards != nil {
		cards.Each(func(_ int, card *goquery.Selection) {
			if href := cardLink(card); href != "" {
				add(href)
			}
		})
	}

	// Whole-page sweep when the structured locators found nothing.
	if len(links) == 0 {
		doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
			href := anchor.AttrOr("href", "")
			if href == "" {
				return
			}
			if strings.Contains(href, "product") || strings.Contains(href, "/p/") {
				add(href)
			}
		})
		slog.Debug("product links located by generic sweep", "count", len(links))
	}

	return links
}

func findCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range productCardSelectors {
		if cards := doc.Find(selector); cards.Length() > 0 {
			slog.Debug("product cards located", "locator", selector, "count", cards.Length())
			return cards
		}
	}
	for _, selector := range []string{`a[href*="product"]`, `a[href*="/products/"]`} {
		if cards := doc.Find(selector); cards.Length() > 0 {
			slog.Debug("product cards located by href", "locator", selector, "count", cards.Length())
			return cards
		}
	}
	return nil
}

// cardLink finds the detail-page href for one card: the card itself when
// it is an anchor with an href, otherwise the first inner locator yielding
// a non-empty href, with a bare anchor as the last resort.
func cardLink(card *goquery.Selection) string {
	if goquery.NodeName(card) == "a" {
		if href := card.AttrOr("href", ""); href != "" {
			return href
		}
	}
	for _, selector := range cardLinkSelectors {
		if href := card.Find(selector).First().AttrOr("href", ""); href != "" {
			return href
		}
	}
	return ""
}
