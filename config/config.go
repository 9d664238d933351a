package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL        string
	StartURL       string
	MaxPages       int
	ProductDelay   time.Duration // pause after each product page fetch
	PageDelay      time.Duration // pause between listing pages
	Delay          time.Duration // transport-level delay (colly limit rule)
	RandomDelay    time.Duration
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	JSONFile       string
	CSVFile        string
	MetricsAddr    string
	PageCacheSize  int
	Verbose        bool
}

// DefaultConfig returns the defaults for the Jennifer Furniture catalog.
// Running the binary with no flags reproduces the original crawl: four
// listing pages starting at the mattress collection, results written next
// to the invocation.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://www.jenniferfurniture.com/",
		StartURL:       "https://www.jenniferfurniture.com/collections/modern-heritage-mattresses.html",
		MaxPages:       4,
		ProductDelay:   1 * time.Second,
		PageDelay:      2 * time.Second,
		Delay:          0,
		RandomDelay:    0,
		Timeout:        10 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		JSONFile:       "jennifer_products.json",
		CSVFile:        "jennifer_products.csv",
		MetricsAddr:    "",
		PageCacheSize:  16,
		Verbose:        false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsedBase, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedBase.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.StartURL == "" {
		return fmt.Errorf("start URL cannot be empty")
	}
	parsedStart, err := url.Parse(c.StartURL)
	if err != nil {
		return fmt.Errorf("invalid start URL: %w", err)
	}
	if parsedStart.Host == "" {
		return fmt.Errorf("start URL must include a host")
	}

	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.ProductDelay < 0 {
		return fmt.Errorf("product delay cannot be negative")
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page delay cannot be negative")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.JSONFile == "" {
		return fmt.Errorf("json output file cannot be empty")
	}
	if c.CSVFile == "" {
		return fmt.Errorf("csv output file cannot be empty")
	}
	if c.PageCacheSize <= 0 {
		return fmt.Errorf("page cache size must be positive")
	}

	return nil
}

// EnvString reads a string environment override.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment override.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, true, nil
}
