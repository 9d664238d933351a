// Package models defines data structures for the scraper.
package models

import "time"

// NotAvailable is the placeholder stored when no extraction strategy
// yields data for a scalar product field.
const NotAvailable = "N/A"

// Product represents one product detail page. A Product is assembled once
// by the parser and not modified afterwards.
type Product struct {
	Title          string            `csv:"title" json:"title"`
	Price          string            `csv:"price" json:"price"`
	OriginalPrice  string            `csv:"original_price" json:"original_price"`
	SKU            string            `csv:"sku" json:"sku"`
	Description    string            `csv:"description" json:"description"`
	Images         []string          `csv:"images" json:"images"`
	Specifications map[string]string `csv:"-" json:"specifications"`
	URL            string            `csv:"url" json:"url"`
}

// CrawlResult holds the overall result of a crawl.
type CrawlResult struct {
	Products     []*Product
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	PageCount    int
	RequestCount int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
}
