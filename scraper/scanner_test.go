package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func listingDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return d
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	scanner, err := NewScanner(nil, "http://example.test/")
	if err != nil {
		t.Fatalf("new scanner: %v", err)
	}
	return scanner
}

func TestScanDocumentFirstCardGroupWins(t *testing.T) {
	// Both the first and a later card locator match; only the first
	// group's cards may contribute links.
	html := `
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/aurora">Aurora</a></h4></div>
</div></div>
<div class="product-card"><a href="/products/ignored">Ignored</a></div>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	if len(links) != 1 || links[0] != "http://example.test/products/aurora" {
		t.Fatalf("links = %v", links)
	}
}

func TestScanDocumentDeduplicates(t *testing.T) {
	html := `
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/aurora">Aurora</a></h4></div>
</div></div>
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/aurora">Aurora again</a></h4></div>
</div></div>
<div class="product-layout"><div class="product-thumb">
	<div class="caption"><h4><a href="/products/halcyon">Halcyon</a></h4></div>
</div></div>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	want := []string{
		"http://example.test/products/aurora",
		"http://example.test/products/halcyon",
	}
	if len(links) != len(want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestScanDocumentCardIsAnchor(t *testing.T) {
	// No structured card locator matches, so cards fall back to anchors
	// whose href mentions the product; the anchor itself carries the link.
	html := `
<a href="/products/aurora">Aurora</a>
<a href="/about">About us</a>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	if len(links) != 1 || links[0] != "http://example.test/products/aurora" {
		t.Fatalf("links = %v", links)
	}
}

func TestScanDocumentLinkInsideCardCascade(t *testing.T) {
	// The card has no caption link; the h2 locator further down the
	// cascade finds the href.
	html := `
<ul class="products"><li class="product">
	<h2><a href="/products/halcyon">Halcyon</a></h2>
</li></ul>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	if len(links) != 1 || links[0] != "http://example.test/products/halcyon" {
		t.Fatalf("links = %v", links)
	}
}

func TestScanDocumentAnyAnchorLastResort(t *testing.T) {
	html := `
<ul class="products"><li class="product">
	<a href="/items/99">Mystery item</a>
</li></ul>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	if len(links) != 1 || links[0] != "http://example.test/items/99" {
		t.Fatalf("links = %v", links)
	}
}

func TestScanDocumentWholePageSweep(t *testing.T) {
	// No cards anywhere; the sweep keeps anchors whose href mentions
	// "/p/" or "product".
	html := `
<a href="/p/123">Short link</a>
<a href="/contact">Contact</a>`

	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, html))

	if len(links) != 1 || links[0] != "http://example.test/p/123" {
		t.Fatalf("links = %v", links)
	}
}

func TestScanDocumentEmptyPage(t *testing.T) {
	scanner := newTestScanner(t)
	links := scanner.ScanDocument(listingDoc(t, `<html><body><p>nothing here</p></body></html>`))

	if len(links) != 0 {
		t.Fatalf("links = %v, want none", links)
	}
}
