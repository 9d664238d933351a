package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jferreira/jennifer-scraper/config"
	"github.com/jferreira/jennifer-scraper/models"
	"github.com/jferreira/jennifer-scraper/pipeline"
	"github.com/jferreira/jennifer-scraper/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()

	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("SCRAPER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	startDefault := defaultCfg.StartURL
	if value, ok := config.EnvString("SCRAPER_START_URL"); ok {
		startDefault = value
	}
	jsonDefault := defaultCfg.JSONFile
	if value, ok := config.EnvString("SCRAPER_JSON"); ok {
		jsonDefault = value
	}
	csvDefault := defaultCfg.CSVFile
	if value, ok := config.EnvString("SCRAPER_CSV"); ok {
		csvDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Site base address for resolving relative URLs")
	startURL := flag.String("start-url", startDefault, "Listing page to start crawling from")
	maxPages := flag.Int("pages", pagesDefault, "Maximum listing pages to crawl")
	productDelayMs := flag.Int("product-delay", int(defaultCfg.ProductDelay/time.Millisecond), "Pause after each product page (milliseconds)")
	pageDelayMs := flag.Int("page-delay", int(defaultCfg.PageDelay/time.Millisecond), "Pause between listing pages (milliseconds)")
	jsonFile := flag.String("json", jsonDefault, "JSON output path")
	csvFile := flag.String("csv", csvDefault, "CSV output path")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.BaseURL = *baseURL
	cfg.StartURL = *startURL
	cfg.MaxPages = *maxPages
	cfg.ProductDelay = time.Duration(*productDelayMs) * time.Millisecond
	cfg.PageDelay = time.Duration(*pageDelayMs) * time.Millisecond
	cfg.JSONFile = *jsonFile
	cfg.CSVFile = *csvFile
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("start_url", cfg.StartURL),
		slog.Int("pages", cfg.MaxPages),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing current page")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result := s.Run(ctx)

	exitCode := 0
	jsonExporter := &pipeline.JSONExporter{Path: cfg.JSONFile}
	if err := jsonExporter.Export(result.Products); err != nil {
		slog.Error("json export failed", slog.Any("error", err))
		exitCode = 1
	}
	csvExporter := &pipeline.CSVExporter{Path: cfg.CSVFile}
	if err := csvExporter.Export(result.Products); err != nil {
		slog.Error("csv export failed", slog.Any("error", err))
		exitCode = 1
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, cfg)
	os.Exit(exitCode)
}

func printSummary(result *models.CrawlResult, cfg *config.Config) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")

	fmt.Printf("  Products:      %d\n", result.TotalCount)
	fmt.Printf("  Listing pages: %d\n", result.PageCount)
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if len(result.FailedURLs) > 0 {
		fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  JSON output:   %s\n", cfg.JSONFile)
	fmt.Printf("  CSV output:    %s\n", cfg.CSVFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
