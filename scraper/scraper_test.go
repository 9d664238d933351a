package scraper

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/jferreira/jennifer-scraper/config"
)

const testListingPage = `
<html><body>
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/aurora-mattress">Aurora</a></h4></div>
</div></div>
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/halcyon-mattress">Halcyon</a></h4></div>
</div></div>
</body></html>`

const testProductPage = `
<html><body>
<h1 class="product-title">Aurora Mattress</h1>
<span class="price-new">$899.00</span>
<span class="price-old">$1,099.00</span>
<div class="sku">SKU: AUR-100</div>
<div class="product-description">Plush queen mattress.</div>
<div class="product-image-main"><img src="/images/aurora.jpg"></div>
</body></html>`

func newCrawlScraper(t *testing.T, transport *httpmock.MockTransport, startURL string, maxPages int) *Scraper {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://example.test/"
	cfg.StartURL = startURL
	cfg.MaxPages = maxPages
	cfg.ProductDelay = 0
	cfg.PageDelay = 0
	cfg.Delay = 0
	cfg.RandomDelay = 0

	s, err := NewScraper(cfg)
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	s.fetcher.collector.WithTransport(transport)
	return s
}

func TestCrawlSingleListingPage(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/all",
		httpmock.NewStringResponder(200, testListingPage))
	transport.RegisterResponder("GET", "http://example.test/products/aurora-mattress",
		httpmock.NewStringResponder(200, testProductPage))
	transport.RegisterResponder("GET", "http://example.test/products/halcyon-mattress",
		httpmock.NewStringResponder(200, testProductPage))

	s := newCrawlScraper(t, transport, "http://example.test/collections/all", 1)
	result := s.Run(context.Background())

	if result.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", result.TotalCount)
	}
	if result.PageCount != 1 {
		t.Fatalf("PageCount = %d, want 1", result.PageCount)
	}
	// One listing request (the scanner reuses the cached page) plus two
	// product requests, and no attempt at a second listing page.
	if result.RequestCount != 3 {
		t.Fatalf("RequestCount = %d, want 3", result.RequestCount)
	}

	first := result.Products[0]
	if first.URL != "http://example.test/products/aurora-mattress" {
		t.Errorf("Products[0].URL = %q", first.URL)
	}
	if first.Title != "Aurora Mattress" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Price != "899.00" {
		t.Errorf("Price = %q", first.Price)
	}
	if first.OriginalPrice != "1,099.00" {
		t.Errorf("OriginalPrice = %q", first.OriginalPrice)
	}
	if second := result.Products[1]; second.URL != "http://example.test/products/halcyon-mattress" {
		t.Errorf("Products[1].URL = %q", second.URL)
	}
}

func TestCrawlLoopGuard(t *testing.T) {
	// The next link points back at the current page; the crawl must stop
	// after one page instead of spinning.
	listing := `
<html><body>
<a class="next" href="http://example.test/collections/loop">next</a>
</body></html>`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/loop",
		httpmock.NewStringResponder(200, listing))

	s := newCrawlScraper(t, transport, "http://example.test/collections/loop", 5)
	result := s.Run(context.Background())

	if result.PageCount != 1 {
		t.Fatalf("PageCount = %d, want 1", result.PageCount)
	}
	if result.TotalCount != 0 {
		t.Fatalf("TotalCount = %d, want 0", result.TotalCount)
	}
}

func TestCrawlHonorsMaxPages(t *testing.T) {
	// Numeric pagination generates an endless page sequence; the page
	// bound must stop the crawl after two listing pages.
	empty := `<html><body><p>no products this page</p></body></html>`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/all?page=1",
		httpmock.NewStringResponder(200, empty))
	transport.RegisterResponder("GET", "http://example.test/collections/all?page=2",
		httpmock.NewStringResponder(200, empty))

	s := newCrawlScraper(t, transport, "http://example.test/collections/all?page=1", 2)
	result := s.Run(context.Background())

	if result.PageCount != 2 {
		t.Fatalf("PageCount = %d, want 2", result.PageCount)
	}
	if result.RequestCount != 2 {
		t.Fatalf("RequestCount = %d, want 2 (page=3 must not be fetched)", result.RequestCount)
	}
}

func TestCrawlStopsOnListingFetchFailure(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/all",
		httpmock.NewStringResponder(500, "server error"))

	s := newCrawlScraper(t, transport, "http://example.test/collections/all", 4)
	result := s.Run(context.Background())

	if result.PageCount != 0 {
		t.Fatalf("PageCount = %d, want 0", result.PageCount)
	}
	if result.TotalCount != 0 {
		t.Fatalf("TotalCount = %d, want 0", result.TotalCount)
	}
	if result.ErrorCount == 0 {
		t.Fatalf("ErrorCount = 0, want at least 1")
	}
	if len(result.FailedURLs) == 0 {
		t.Fatalf("FailedURLs empty, want the listing URL recorded")
	}
}

func TestCrawlSkipsFailedProductPages(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/all",
		httpmock.NewStringResponder(200, testListingPage))
	transport.RegisterResponder("GET", "http://example.test/products/aurora-mattress",
		httpmock.NewStringResponder(404, "gone"))
	transport.RegisterResponder("GET", "http://example.test/products/halcyon-mattress",
		httpmock.NewStringResponder(200, testProductPage))

	s := newCrawlScraper(t, transport, "http://example.test/collections/all", 1)
	result := s.Run(context.Background())

	if result.TotalCount != 1 {
		t.Fatalf("TotalCount = %d, want 1", result.TotalCount)
	}
	if result.Products[0].URL != "http://example.test/products/halcyon-mattress" {
		t.Errorf("surviving product URL = %q", result.Products[0].URL)
	}
	if result.ErrorsByType[errNotFound] != 1 {
		t.Errorf("ErrorsByType = %v, want one not_found", result.ErrorsByType)
	}
}

func TestFetcherCachesPages(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/collections/all",
		httpmock.NewStringResponder(200, testListingPage))

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://example.test/"
	cfg.Delay = 0
	cfg.RandomDelay = 0

	fetcher, err := NewFetcher(cfg, NewMetrics())
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	fetcher.collector.WithTransport(transport)

	for i := 0; i < 3; i++ {
		body, err := fetcher.Fetch("http://example.test/collections/all")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if body == "" {
			t.Fatalf("fetch %d returned empty body", i)
		}
	}

	if got := fetcher.RequestCount(); got != 1 {
		t.Fatalf("RequestCount = %d, want 1 (later fetches served from cache)", got)
	}
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected string
	}{
		{name: "forbidden", status: 403, expected: errForbidden},
		{name: "not found", status: 404, expected: errNotFound},
		{name: "rate limited", status: 429, expected: errRateLimited},
		{name: "server error", status: 500, expected: errOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyFetchError(nil, tt.status)
			if err.Category != tt.expected {
				t.Fatalf("Category = %q, want %q", err.Category, tt.expected)
			}
			if fetchErrorLabel(err) != tt.expected {
				t.Fatalf("label = %q, want %q", fetchErrorLabel(err), tt.expected)
			}
		})
	}
}

func TestClassifyFetchErrorTimeout(t *testing.T) {
	err := classifyFetchError(context.DeadlineExceeded, 0)
	if err.Category != errTimeout {
		t.Fatalf("Category = %q, want %q", err.Category, errTimeout)
	}
}
