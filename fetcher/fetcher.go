package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"websearch/metrics"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36 Edg/121.0.0.0"
)

type Config struct {
	Headers map[string]string
	Proxies map[string]string
	Timeout time.Duration
}

// Request describes one page fetch. Form is sent url-encoded for POST and
// ignored for GET. Header entries override the fetcher's configured headers.
type Request struct {
	URL    string
	Method string
	Header http.Header
	Form   url.Values
}

type Fetcher struct {
	client  *http.Client
	headers http.Header
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Fetcher)

// WithTransport replaces the proxy-aware transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.client.Transport = rt
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

func New(cfg Config, logger *zap.Logger, opts ...Option) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport, err := NewTransport(cfg.Proxies)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	if headers.Get("User-Agent") == "" {
		headers.Set("User-Agent", DefaultUserAgent)
	}

	f := &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		headers: headers,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fetch issues exactly one request and parses the body into a document,
// whatever its declared content type. Failures are logged before they are
// returned; there are no retries.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*goquery.Document, error) {
	start := time.Now()
	doc, outcome, err := f.fetch(ctx, req)
	f.metrics.ObserveFetch(req.Method, outcome, time.Since(start))

	if err != nil {
		ContextLogger(ctx, f.logger).Error("fetch failed",
			zap.String("url", req.URL),
			zap.String("method", req.Method),
			zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (f *Fetcher) fetch(ctx context.Context, req Request) (*goquery.Document, string, error) {
	httpReq, err := f.newRequest(ctx, req)
	if err != nil {
		return nil, metrics.OutcomeInvalid, err
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, metrics.OutcomeTransport, &TransportError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, metrics.OutcomeStatus, &FetchError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, metrics.OutcomeTransport, &TransportError{URL: req.URL, Err: fmt.Errorf("read body: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, metrics.OutcomeTransport, &TransportError{URL: req.URL, Err: fmt.Errorf("parse body: %w", err)}
	}
	doc.Url = httpReq.URL

	return doc, metrics.OutcomeOK, nil
}

func (f *Fetcher) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := url.Parse(req.URL)
	if err != nil || target.Host == "" || (target.Scheme != "http" && target.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}

	var (
		body        io.Reader
		contentType string
	)
	switch req.Method {
	case http.MethodGet:
	case http.MethodPost:
		if req.Form == nil {
			return nil, ErrMissingForm
		}
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range f.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	return httpReq, nil
}
