// Package parser turns fetched product pages into Product records using
// ordered locator fallbacks that tolerate markup drift across the site's
// templates.
package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jferreira/jennifer-scraper/models"
)

// Fetcher retrieves the raw markup of a page.
type Fetcher interface {
	Fetch(url string) (string, error)
}

// ProductParser assembles Product records from product detail pages.
type ProductParser struct {
	fetcher Fetcher
	base    *url.URL
}

// NewProductParser builds a parser resolving relative URLs against baseURL.
func NewProductParser(fetcher Fetcher, baseURL string) (*ProductParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}
	return &ProductParser{fetcher: fetcher, base: base}, nil
}

// Parse fetches and parses one product page. A fetch failure yields no
// record; a field with no matching locator degrades to its empty marker
// instead.
func (p *ProductParser) Parse(pageURL string) (*models.Product, error) {
	html, err := p.fetcher.Fetch(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch product page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse product page: %w", err)
	}
	return p.ParseDocument(pageURL, doc), nil
}

// ParseDocument extracts every product field from an already parsed page.
func (p *ProductParser) ParseDocument(pageURL string, doc *goquery.Document) *models.Product {
	slog.Debug("parsing product page", "url", pageURL)

	product := &models.Product{
		Title:       extractFirst(doc, "title", titleStrategies),
		Price:       extractFirst(doc, "price", priceStrategies),
		SKU:         extractFirst(doc, "sku", skuStrategies),
		Description: extractFirst(doc, "description", descriptionStrategies),
		URL:         pageURL,
	}

	// No old-price element is read as "not on sale", so the original
	// price mirrors the current one. This conflates absence of the
	// element with absence of a sale; kept on purpose.
	product.OriginalPrice = extractFirst(doc, "original_price", originalPriceStrategies)
	if product.OriginalPrice == models.NotAvailable {
		product.OriginalPrice = product.Price
	}

	product.Images = imageLocators.Extract(doc, p.base)
	product.Specifications = specLocators.Extract(doc)

	return product
}
