package parser

import "regexp"

var (
	nonPriceChars = regexp.MustCompile(`[^\d.,]`)
	skuLabel      = regexp.MustCompile(`(?i)^SKU:?\s*`)
	priceFallback = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
	skuFallback   = regexp.MustCompile(`SKU:?\s*([A-Za-z0-9-]+)`)
)

// CleanPrice strips everything but digits, commas, and periods.
func CleanPrice(text string) string {
	return nonPriceChars.ReplaceAllString(text, "")
}

// CleanSKU strips a leading "SKU" label, with or without a colon.
func CleanSKU(text string) string {
	return skuLabel.ReplaceAllString(text, "")
}

func selectorChain(clean Cleaner, selectors ...string) []Strategy {
	chain := make([]Strategy, 0, len(selectors))
	for _, selector := range selectors {
		chain = append(chain, SelectorText{Selector: selector, Clean: clean})
	}
	return chain
}

// Locator lists below were collected from the site's template variants and
// are ordered by precedence; do not reorder them.

var titleStrategies = append(selectorChain(nil,
	"h1.product-title",
	"h1.title",
	"h1.product-single__title",
	`h1[itemprop="name"]`,
	".product-title h1",
	"#product-title",
), FirstHeading{})

var priceStrategies = append(selectorChain(CleanPrice,
	"span.price-new",
	".price",
	".product-price",
	`span[itemprop="price"]`,
	".product-single__price",
	"#product-price",
	"div.price-box span.regular-price",
), RegexScan{Pattern: priceFallback})

// No regex fallback here: a missing old-price element means the product is
// treated as not on sale.
var originalPriceStrategies = selectorChain(CleanPrice,
	"span.price-old",
	".compare-price",
	".product-single__price--compare",
	".was-price",
	"span.old-price",
)

var skuStrategies = append(selectorChain(CleanSKU,
	"div.sku",
	".product-sku",
	`span[itemprop="sku"]`,
	".product-single__sku",
), RegexScan{Pattern: skuFallback})

var descriptionStrategies = append(selectorChain(nil,
	"div.product-description",
	".description",
	"#product-description",
	`div[itemprop="description"]`,
	".product-single__description",
	".product-description-container",
), MetaContent{Meta: "description"})

var imageLocators = ImageExtractor{Groups: []string{
	"div.product-image-main img",
	".product-featured-image img",
	".product-single__media img",
	`img[itemprop="image"]`,
	".product-single__photo img",
	"div.product-img-box img",
	"#product-featured-image",
}}

var specLocators = SpecExtractor{
	Groups: []string{
		"div.product-specification div.row",
		".product-details table tr",
		".product-specs table tr",
		"table.product-attributes tr",
		".product-features li",
	},
	Names:  []string{"div.col-sm-4", "th", "td:first-child", "strong"},
	Values: []string{"div.col-sm-8", "td:last-child", "span"},
}
