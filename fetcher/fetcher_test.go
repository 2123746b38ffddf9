package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"websearch/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T, cfg Config, opts ...Option) *Fetcher {
	t.Helper()
	f, err := New(cfg, zap.NewNop(), opts...)
	require.NoError(t, err)
	return f
}

func TestFetcher_GetAppliesHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(`<html><body><p>hello</p></body></html>`))
	}))
	defer server.Close()

	f := newTestFetcher(t, Config{Headers: map[string]string{
		"User-Agent":      "test-agent/1.0",
		"Accept-Language": "en-US",
	}})

	doc, err := f.Fetch(context.Background(), Request{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)

	assert.Equal(t, "hello", doc.Find("p").Text())
	assert.Equal(t, "test-agent/1.0", gotUA)
	assert.Equal(t, "en-US", gotLang)
	require.NotNil(t, doc.Url)
	assert.Equal(t, server.URL, doc.Url.String())
}

func TestFetcher_DefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	f := newTestFetcher(t, Config{})
	_, err := f.Fetch(context.Background(), Request{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestFetcher_PostSendsForm(t *testing.T) {
	var gotMethod, gotQuery, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.PostFormValue("q")
		w.Write([]byte(`<a href="https://example.com">Example</a>`))
	}))
	defer server.Close()

	f := newTestFetcher(t, Config{Headers: map[string]string{"Content-Type": "text/plain"}})
	doc, err := f.Fetch(context.Background(), Request{
		URL:    server.URL,
		Method: http.MethodPost,
		Form:   url.Values{"q": {"golang testing"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "golang testing", gotQuery)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, 1, doc.Find("a").Length())
}

func TestFetcher_NonHTMLBodyParses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	f := newTestFetcher(t, Config{})
	doc, err := f.Fetch(context.Background(), Request{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("div.g").Length())
}

func TestFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte("ok"))
		}
	}))
	defer server.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	f := newTestFetcher(t, Config{})

	tests := []struct {
		name       string
		req        Request
		wantStatus int
		transport  bool
		sentinel   error
	}{
		{
			name:       "not found",
			req:        Request{URL: server.URL + "/missing", Method: http.MethodGet},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "service unavailable",
			req:        Request{URL: server.URL + "/broken", Method: http.MethodGet},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:      "connection refused",
			req:       Request{URL: closedURL, Method: http.MethodGet},
			transport: true,
		},
		{
			name:     "unsupported method",
			req:      Request{URL: server.URL, Method: http.MethodPut},
			sentinel: ErrUnsupportedMethod,
		},
		{
			name:     "post without form",
			req:      Request{URL: server.URL, Method: http.MethodPost},
			sentinel: ErrMissingForm,
		},
		{
			name:     "relative url",
			req:      Request{URL: "/search?q=x", Method: http.MethodGet},
			sentinel: ErrInvalidURL,
		},
		{
			name:     "non http scheme",
			req:      Request{URL: "ftp://example.com/file", Method: http.MethodGet},
			sentinel: ErrInvalidURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := f.Fetch(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, doc)

			switch {
			case tt.wantStatus != 0:
				var fetchErr *FetchError
				require.True(t, errors.As(err, &fetchErr), "want *FetchError, got %T", err)
				assert.Equal(t, tt.wantStatus, fetchErr.StatusCode)
				assert.Equal(t, tt.req.URL, fetchErr.URL)
			case tt.transport:
				var transportErr *TransportError
				require.True(t, errors.As(err, &transportErr), "want *TransportError, got %T", err)
				assert.Equal(t, tt.req.URL, transportErr.URL)
				assert.NotNil(t, errors.Unwrap(transportErr))
			default:
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := newTestFetcher(t, Config{Timeout: 50 * time.Millisecond})

	_, err := f.Fetch(context.Background(), Request{URL: server.URL, Method: http.MethodGet})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "want *TransportError, got %T", err)
}

func TestFetcher_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	m := metrics.New(prometheus.NewRegistry())
	f := newTestFetcher(t, Config{}, WithMetrics(m))

	_, err := f.Fetch(context.Background(), Request{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), Request{URL: server.URL + "/missing", Method: http.MethodGet})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues(http.MethodGet, metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues(http.MethodGet, metrics.OutcomeStatus)))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return fn(r) }

func TestFetcher_WithTransport(t *testing.T) {
	calls := 0
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("offline")
	})

	f := newTestFetcher(t, Config{}, WithTransport(rt))
	_, err := f.Fetch(context.Background(), Request{URL: "https://example.com", Method: http.MethodGet})

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 1, calls)
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = EnsureRequestID(ctx)
	id := RequestID(ctx)
	require.NotEmpty(t, id)

	assert.Equal(t, id, RequestID(EnsureRequestID(ctx)))
	assert.Equal(t, "abc", RequestID(WithRequestID(ctx, "abc")))
}
