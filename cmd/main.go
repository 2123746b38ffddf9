package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"websearch/config"
	"websearch/content"
	"websearch/fetcher"
	"websearch/metrics"
	"websearch/search"
	"websearch/summary"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	var (
		query       = flag.String("query", "", "search query")
		engine      = flag.String("engine", "baidu", "search engine: google, bing or baidu")
		variant     = flag.Int("variant", 1, "engine variant (google: 1 results page, 2 lite fallback)")
		count       = flag.Int("count", 3, "number of results to summarize")
		configPath  = flag.String("config", "", "path to a YAML config file")
		mode        = flag.String("mode", "", "content mode: text, readability, trafilatura or markdown")
		logLevel    = flag.String("log-level", "", "log level override")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	)
	flag.Parse()

	if *query == "" {
		flag.Usage()
		os.Exit(2)
	}

	// =========
	// Config
	// =========
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *mode != "" {
		cfg.Content.Mode = *mode
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Metrics
	// =========
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		server := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer server.Close()
	}

	// =========
	// HTTP
	// =========
	pageFetcher, err := fetcher.New(cfg.Fetcher(), logger, fetcher.WithMetrics(m))
	if err != nil {
		logger.Fatal("failed to create fetcher", zap.Error(err))
	}

	// =========
	// Search, content and summaries
	// =========
	searcher := search.NewSearcher(pageFetcher, logger,
		search.WithEndpoints(cfg.SearchEndpoints()),
		search.WithCacheSize(cfg.CacheSize),
		search.WithMetrics(m))
	extractor := content.NewExtractor(pageFetcher, cfg.ContentExtractor(), logger)
	aggregator := summary.New(searcher, extractor, logger,
		summary.WithMinLength(cfg.Content.MinSummaryLength),
		summary.WithMetrics(m))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q := search.Query{Text: *query, Engine: search.Engine(*engine), Variant: *variant}
	summaries, err := aggregator.GetSummaries(ctx, q, *count)
	if err != nil {
		logger.Error("search failed", zap.Error(err))
		logger.Sync()
		log.Fatalf("search failed: %v", err)
	}

	printSummaries(os.Stdout, summaries)
}

// printSummaries writes each summary under a 1-based heading, blocks
// separated by a blank line.
func printSummaries(w io.Writer, summaries []string) {
	for i, s := range summaries {
		fmt.Fprintf(w, "Summary %d:\n%s\n\n", i+1, s)
	}
}
