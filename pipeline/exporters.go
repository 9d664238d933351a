// Package pipeline serializes crawl results to the output files.
package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jferreira/jennifer-scraper/models"
)

// Exporter serializes the full product list to one output format.
type Exporter interface {
	Export(products []*models.Product) error
}

// JSONExporter writes the product list as an indented JSON array with
// non-ASCII characters preserved verbatim. It always produces a file,
// even for an empty result set.
type JSONExporter struct {
	Path string
}

// Export writes all products to the configured path.
func (e *JSONExporter) Export(products []*models.Product) error {
	if products == nil {
		products = []*models.Product{}
	}

	if err := ensureDir(e.Path); err != nil {
		return err
	}
	f, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(products); err != nil {
		f.Close()
		return fmt.Errorf("encode products: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close json file: %w", err)
	}

	slog.Info("saved products", "count", len(products), "path", e.Path)
	return nil
}

// CSVExporter writes a flat table: fixed leading columns, a dynamic block
// of spec_<name> columns discovered by a first pass over all records, and
// a trailing images column. An empty result set skips the file entirely.
type CSVExporter struct {
	Path string
}

// Export writes all products to the configured path.
func (e *CSVExporter) Export(products []*models.Product) error {
	if len(products) == 0 {
		slog.Warn("no products to export, skipping csv", "path", e.Path)
		return nil
	}

	specColumns := collectSpecColumns(products)

	header := []string{"title", "price", "original_price", "sku", "description", "url"}
	header = append(header, specColumns...)
	header = append(header, "images")

	if err := ensureDir(e.Path); err != nil {
		return err
	}
	f, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, product := range products {
		record := []string{
			product.Title,
			product.Price,
			product.OriginalPrice,
			product.SKU,
			product.Description,
			product.URL,
		}
		for _, column := range specColumns {
			record = append(record, product.Specifications[strings.TrimPrefix(column, "spec_")])
		}
		record = append(record, strings.Join(product.Images, "; "))
		if err := writer.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv records: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv file: %w", err)
	}

	slog.Info("saved products", "count", len(products), "path", e.Path)
	return nil
}

// collectSpecColumns is the first pass of the export: gather every
// specification key across all records so the column set and its order
// are deterministic before any row is written.
func collectSpecColumns(products []*models.Product) []string {
	set := make(map[string]struct{})
	for _, product := range products {
		for name := range product.Specifications {
			set["spec_"+name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for column := range set {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
