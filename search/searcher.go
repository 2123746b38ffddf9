package search

import (
	"context"
	"slices"
	"time"

	"websearch/fetcher"
	"websearch/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Searcher dispatches a Query to its engine, extracts the results and
// memoizes them per (text, engine, variant). Cached results are served even
// if the provider's page has changed since.
type Searcher struct {
	fetcher   PageFetcher
	endpoints Endpoints
	cache     *ResultCache
	cacheSize int
	group     singleflight.Group
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type SearcherOption func(*Searcher)

func WithEndpoints(e Endpoints) SearcherOption {
	return func(s *Searcher) {
		s.endpoints = e.withDefaults()
	}
}

// WithCacheSize bounds the default cache. Ignored when WithCache is given.
func WithCacheSize(n int) SearcherOption {
	return func(s *Searcher) {
		s.cacheSize = n
	}
}

func WithCache(c *ResultCache) SearcherOption {
	return func(s *Searcher) {
		s.cache = c
	}
}

func WithMetrics(m *metrics.Metrics) SearcherOption {
	return func(s *Searcher) {
		s.metrics = m
	}
}

func NewSearcher(f PageFetcher, logger *zap.Logger, opts ...SearcherOption) *Searcher {
	s := &Searcher{
		fetcher:   f,
		endpoints: DefaultEndpoints(),
		cacheSize: DefaultCacheSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewResultCache(s.cacheSize, WithEvictionHook(s.onEvict))
	}
	return s
}

// Search returns the results of q in the order the provider lists them.
// An unknown engine or variant fails before any network access; a failed
// results-page fetch is returned to the caller and is not cached.
func (s *Searcher) Search(ctx context.Context, q Query) ([]SearchResult, error) {
	ctx = fetcher.EnsureRequestID(ctx)
	logger := fetcher.ContextLogger(ctx, s.logger)

	p, err := s.endpoints.resolve(q)
	if err != nil {
		logger.Warn("rejected search",
			zap.String("engine", string(q.Engine)),
			zap.Int("variant", q.Variant),
			zap.Error(err))
		return nil, err
	}

	key := CacheKey{Text: q.Text, Engine: p.engine, Variant: q.Variant}
	if results, age, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		logger.Debug("search cache hit",
			zap.Stringer("key", key),
			zap.Duration("age", age))
		return slices.Clone(results), nil
	}
	s.metrics.CacheMiss()

	// the shared fetch outlives any single caller; the fetcher timeout bounds it
	ch := s.group.DoChan(key.String(), func() (interface{}, error) {
		return s.run(context.WithoutCancel(ctx), key, p)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		s.metrics.ObserveSearch(string(p.engine), "error")
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.metrics.ObserveSearch(string(p.engine), "error")
		return nil, res.Err
	}
	s.metrics.ObserveSearch(string(p.engine), "ok")

	results := res.Val.([]SearchResult)
	logger.Info("search completed",
		zap.Stringer("key", key),
		zap.Stringer("strategy", p.strategy),
		zap.Int("results", len(results)),
		zap.Bool("shared", res.Shared))

	return slices.Clone(results), nil
}

func (s *Searcher) run(ctx context.Context, key CacheKey, p plan) ([]SearchResult, error) {
	// a concurrent caller may have filled the cache while we waited
	if results, _, ok := s.cache.Get(key); ok {
		return results, nil
	}

	start := time.Now()
	doc, err := s.fetcher.Fetch(ctx, p.request)
	if err != nil {
		return nil, err
	}

	results := s.endpoints.extract(p.strategy, doc)
	s.cache.Add(key, results)

	fetcher.ContextLogger(ctx, s.logger).Debug("results page extracted",
		zap.String("url", p.request.URL),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

func (s *Searcher) onEvict(key CacheKey, storedAt time.Time) {
	s.metrics.CacheEviction()
	s.logger.Debug("search cache eviction",
		zap.Stringer("key", key),
		zap.Time("stored_at", storedAt))
}
