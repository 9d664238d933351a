package parser

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jferreira/jennifer-scraper/models"
)

// Cleaner normalizes the raw text a locator extracted.
type Cleaner func(string) string

// Strategy attempts to extract one scalar field value from a document.
// Implementations report whether they matched at all; an empty string with
// ok=true is a legitimate result (the locator matched an empty element).
type Strategy interface {
	Extract(doc *goquery.Document) (string, bool)
	Name() string
}

// SelectorText extracts the trimmed text of the first element matching a
// CSS selector, passed through an optional cleaner.
type SelectorText struct {
	Selector string
	Clean    Cleaner
}

func (s SelectorText) Extract(doc *goquery.Document) (string, bool) {
	sel := doc.Find(s.Selector)
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.First().Text())
	if s.Clean != nil {
		text = s.Clean(text)
	}
	return text, true
}

func (s SelectorText) Name() string { return s.Selector }

// MetaContent extracts the content attribute of a named meta tag.
type MetaContent struct {
	Meta string
}

func (m MetaContent) Extract(doc *goquery.Document) (string, bool) {
	content, ok := doc.Find(`meta[name="` + m.Meta + `"]`).First().Attr("content")
	if !ok || content == "" {
		return "", false
	}
	return content, true
}

func (m MetaContent) Name() string { return `meta[name="` + m.Meta + `"]` }

// FirstHeading falls back to the first h1 on the page.
type FirstHeading struct{}

func (FirstHeading) Extract(doc *goquery.Document) (string, bool) {
	sel := doc.Find("h1")
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.First().Text()), true
}

func (FirstHeading) Name() string { return "first h1" }

// RegexScan is the last resort: it runs a pattern over the serialized
// document and returns the first capture group of the first match, or the
// whole match when the pattern has no groups.
type RegexScan struct {
	Pattern *regexp.Regexp
}

func (r RegexScan) Extract(doc *goquery.Document) (string, bool) {
	html, err := doc.Html()
	if err != nil {
		return "", false
	}
	match := r.Pattern.FindStringSubmatch(html)
	if match == nil {
		return "", false
	}
	if len(match) > 1 {
		return match[1], true
	}
	return match[0], true
}

func (r RegexScan) Name() string { return "regex " + r.Pattern.String() }

// extractFirst runs strategies in declared order and keeps the first
// match. Order is significant: it encodes template precedence observed on
// the target site, and later strategies are never tried once one matches.
func extractFirst(doc *goquery.Document, field string, strategies []Strategy) string {
	for _, strategy := range strategies {
		if value, ok := strategy.Extract(doc); ok {
			slog.Debug("field extracted", "field", field, "locator", strategy.Name())
			return value
		}
	}
	slog.Debug("field not found", "field", field)
	return models.NotAvailable
}

// ImageExtractor collects image URLs from the first locator group that
// matches anything, reading src then data-src and resolving each against
// the site base. Duplicates are kept in document order.
type ImageExtractor struct {
	Groups []string
}

func (ie ImageExtractor) Extract(doc *goquery.Document, base *url.URL) []string {
	images := []string{}
	for _, group := range ie.Groups {
		sel := doc.Find(group)
		if sel.Length() == 0 {
			continue
		}
		sel.Each(func(_ int, img *goquery.Selection) {
			if resolved := ResolveURL(base, imageSource(img)); resolved != "" {
				images = append(images, resolved)
			}
		})
		slog.Debug("images extracted", "locator", group, "count", len(images))
		break
	}

	// Generic sweep when the structured locators produced nothing: any
	// image whose URL mentions the product.
	if len(images) == 0 {
		doc.Find("img").Each(func(_ int, img *goquery.Selection) {
			raw := imageSource(img)
			lower := strings.ToLower(raw)
			if raw == "" || (!strings.Contains(lower, "product") && !strings.Contains(lower, "item")) {
				return
			}
			if resolved := ResolveURL(base, raw); resolved != "" {
				images = append(images, resolved)
			}
		})
	}

	return images
}

func imageSource(img *goquery.Selection) string {
	if src := img.AttrOr("src", ""); src != "" {
		return src
	}
	return img.AttrOr("data-src", "")
}

// SpecExtractor builds the specification map from the first row-group
// locator that matches. A row only contributes when both a name and a
// value sub-locator match; duplicate names overwrite earlier rows.
type SpecExtractor struct {
	Groups []string
	Names  []string
	Values []string
}

func (se SpecExtractor) Extract(doc *goquery.Document) map[string]string {
	specs := map[string]string{}
	for _, group := range se.Groups {
		rows := doc.Find(group)
		if rows.Length() == 0 {
			continue
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			name, ok := firstText(row, se.Names)
			if !ok {
				return
			}
			value, ok := firstText(row, se.Values)
			if !ok {
				return
			}
			specs[name] = value
		})
		slog.Debug("specifications extracted", "locator", group, "count", len(specs))
		break
	}
	return specs
}

func firstText(row *goquery.Selection, selectors []string) (string, bool) {
	for _, selector := range selectors {
		if sel := row.Find(selector); sel.Length() > 0 {
			return strings.TrimSpace(sel.First().Text()), true
		}
	}
	return "", false
}

// ResolveURL joins a possibly relative href against the site base.
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
