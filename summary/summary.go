package summary

import (
	"context"
	"unicode/utf8"

	"websearch/fetcher"
	"websearch/metrics"
	"websearch/search"

	"go.uber.org/zap"
)

const DefaultMinLength = 50

type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]search.SearchResult, error)
}

type ContentSource interface {
	GetContent(ctx context.Context, url string) (string, bool)
}

// Aggregator turns a query into page summaries.
type Aggregator struct {
	searcher  Searcher
	content   ContentSource
	minLength int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

type Option func(*Aggregator)

// WithMinLength sets the shortest content, in characters, kept as a summary.
func WithMinLength(n int) Option {
	return func(a *Aggregator) {
		a.minLength = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

func New(s Searcher, c ContentSource, logger *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher:  s,
		content:   c,
		minLength: DefaultMinLength,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GetSummaries fetches the content of at most the first count results, in
// order, and keeps the ones long enough to be useful. Dropped candidates are
// not replaced by later results, so fewer than count summaries may come
// back. Search errors are returned; content failures are not.
func (a *Aggregator) GetSummaries(ctx context.Context, q search.Query, count int) ([]string, error) {
	ctx = fetcher.EnsureRequestID(ctx)
	logger := fetcher.ContextLogger(ctx, a.logger)

	results, err := a.searcher.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if count < 0 {
		count = 0
	}
	candidates := results[:min(count, len(results))]

	summaries := make([]string, 0, len(candidates))
	for _, result := range candidates {
		text, ok := a.content.GetContent(ctx, result.Link)
		if !ok || utf8.RuneCountInString(text) < a.minLength {
			a.metrics.ObserveSummary(false)
			logger.Debug("dropped summary candidate",
				zap.String("url", result.Link),
				zap.Bool("fetched", ok),
				zap.Int("length", utf8.RuneCountInString(text)))
			continue
		}
		a.metrics.ObserveSummary(true)
		summaries = append(summaries, text)
	}

	logger.Info("summaries collected",
		zap.String("query", q.Text),
		zap.String("engine", string(q.Engine)),
		zap.Int("variant", q.Variant),
		zap.Int("results", len(results)),
		zap.Int("attempted", len(candidates)),
		zap.Int("summaries", len(summaries)))

	return summaries, nil
}
