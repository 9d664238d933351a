// Package scraper drives the crawl: fetch listing pages, discover product
// links, parse each product, follow pagination.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jferreira/jennifer-scraper/config"
	"github.com/jferreira/jennifer-scraper/models"
	"github.com/jferreira/jennifer-scraper/parser"
)

// Scraper is the crawl orchestrator. Execution is strictly sequential:
// one fetch completes before the next begins, with politeness pauses
// after each product page and between listing pages.
type Scraper struct {
	cfg     *config.Config
	fetcher *Fetcher
	scanner *Scanner
	parser  *parser.ProductParser
	base    *url.URL
	Metrics *Metrics
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	metrics := NewMetrics()
	fetcher, err := NewFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}
	scanner, err := NewScanner(fetcher, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	productParser, err := parser.NewProductParser(fetcher, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		scanner: scanner,
		parser:  productParser,
		base:    base,
		Metrics: metrics,
	}, nil
}

// Run crawls listing pages starting at StartURL, bounded by MaxPages and
// a loop guard on a self-referential next link. A listing fetch failure
// stops the crawl without error; the partial result is still returned.
// Records accumulate in discovery order and are never deduplicated across
// pages.
func (s *Scraper) Run(ctx context.Context) *models.CrawlResult {
	result := &models.CrawlResult{StartTime: time.Now()}

	current := s.cfg.StartURL
	for page := 0; current != "" && page < s.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}
		slog.Info("scraping listing page", "page", page+1, "url", current)

		html, err := s.fetcher.Fetch(current)
		if err != nil {
			break // already logged by the fetcher
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			slog.Error("parse listing page", "url", current, "error", err)
			break
		}

		links := s.scanner.Scan(current)
		slog.Info("products found on page", "count", len(links), "url", current)

		for _, link := range links {
			if ctx.Err() != nil {
				break
			}
			product, err := s.parser.Parse(link)
			if err != nil {
				slog.Error("parse product page", "url", link, "error", err)
				continue
			}
			result.Products = append(result.Products, product)
			s.Metrics.IncProducts()
			pause(ctx, s.cfg.ProductDelay)
		}

		result.PageCount++
		s.Metrics.IncPages()

		next, ok := nextPageURL(s.base, current, doc)
		if !ok {
			break
		}
		if next == current {
			slog.Debug("next page equals current page, stopping pagination")
			break
		}
		current = next
		pause(ctx, s.cfg.PageDelay)
	}

	result.EndTime = time.Now()
	result.TotalCount = len(result.Products)
	result.RequestCount = s.fetcher.RequestCount()
	result.ErrorCount = s.fetcher.ErrorCount()
	result.FailedURLs = s.fetcher.FailedURLs()
	result.ErrorsByType = s.fetcher.ErrorsByType()
	return result
}

// pause sleeps for the politeness delay without blocking cancellation.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
