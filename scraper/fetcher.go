package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jferreira/jennifer-scraper/config"
)

// Fetcher retrieves raw page markup through a synchronous colly collector
// carrying the fixed request headers. Listing pages are requested by both
// the orchestrator and the scanner during one iteration, so a small LRU
// cache collapses repeated fetches of the same URL into one request.
type Fetcher struct {
	collector *colly.Collector
	cache     *lru.Cache[string, string]
	metrics   *Metrics

	mu           sync.Mutex
	body         []byte
	fetchErr     error
	requestCount int
	errorCount   int
	failedURLs   []string
	errorsByType map[string]int
}

// NewFetcher builds a fetcher configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(base.Host),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(cfg.Timeout)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	cache, err := lru.New[string, string](cfg.PageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}

	f := &Fetcher{
		collector:    collector,
		cache:        cache,
		metrics:      metrics,
		errorsByType: make(map[string]int),
	}

	// The callbacks below write guarded fields without taking f.mu: the
	// collector is synchronous, so they only run inside Visit, which Fetch
	// calls with f.mu held.
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", cfg.AcceptLanguage)
		r.Ctx.Put("start", time.Now())
		f.requestCount++
		f.metrics.IncRequest("started")
		slog.Debug("fetching url", "url", r.URL.String())
	})

	collector.OnResponse(func(r *colly.Response) {
		f.body = r.Body
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			f.metrics.ObserveDuration(time.Since(start))
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		f.fetchErr = classifyFetchError(err, status)
	})

	return f, nil
}

// Fetch returns the raw markup for rawURL. Any transport failure or
// non-2xx status is an error; the URL is recorded as failed and never
// retried for the remainder of the run.
func (f *Fetcher) Fetch(rawURL string) (string, error) {
	if body, ok := f.cache.Get(rawURL); ok {
		return body, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = nil
	f.fetchErr = nil

	visitErr := f.collector.Visit(rawURL)
	f.collector.Wait()

	err := f.fetchErr
	if err == nil && visitErr != nil {
		err = classifyFetchError(visitErr, 0)
	}
	if err != nil {
		f.recordFailure(rawURL, err)
		return "", err
	}

	body := string(f.body)
	f.cache.Add(rawURL, body)
	return body, nil
}

// recordFailure runs with f.mu held.
func (f *Fetcher) recordFailure(rawURL string, err error) {
	label := fetchErrorLabel(err)
	f.errorCount++
	f.errorsByType[label]++
	f.failedURLs = append(f.failedURLs, rawURL)
	f.metrics.IncError(label)
	slog.Error("fetch failed", "url", rawURL, "category", label, "error", err)
}

// RequestCount returns the number of HTTP requests issued so far.
func (f *Fetcher) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestCount
}

// ErrorCount returns the number of failed fetches so far.
func (f *Fetcher) ErrorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorCount
}

// FailedURLs returns a copy of the URLs abandoned after a fetch failure.
func (f *Fetcher) FailedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.failedURLs))
	copy(out, f.failedURLs)
	return out
}

// ErrorsByType returns a copy of the per-category failure counts.
func (f *Fetcher) ErrorsByType() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.errorsByType))
	for k, v := range f.errorsByType {
		out[k] = v
	}
	return out
}
