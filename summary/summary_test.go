package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"websearch/content"
	"websearch/fetcher"
	"websearch/metrics"
	"websearch/search"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	results []search.SearchResult
	err     error
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ search.Query) ([]search.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

// fakeContent serves canned content per link; links absent from pages fail.
type fakeContent struct {
	pages     map[string]string
	requested []string
}

func (f *fakeContent) GetContent(_ context.Context, url string) (string, bool) {
	f.requested = append(f.requested, url)
	text, ok := f.pages[url]
	return text, ok
}

func results(links ...string) []search.SearchResult {
	out := make([]search.SearchResult, len(links))
	for i, l := range links {
		out[i] = search.SearchResult{Title: "title " + l, Link: l}
	}
	return out
}

var long = strings.Repeat("x", DefaultMinLength)

func TestAggregator_GetSummaries(t *testing.T) {
	tests := []struct {
		name          string
		results       []search.SearchResult
		pages         map[string]string
		count         int
		want          []string
		wantRequested []string
	}{
		{
			name:          "keeps long content in order",
			results:       results("a", "b"),
			pages:         map[string]string{"a": long + "a", "b": long + "b"},
			count:         3,
			want:          []string{long + "a", long + "b"},
			wantRequested: []string{"a", "b"},
		},
		{
			name:          "count caps attempts",
			results:       results("a", "b", "c", "d"),
			pages:         map[string]string{"a": long, "b": long, "c": long, "d": long},
			count:         2,
			want:          []string{long, long},
			wantRequested: []string{"a", "b"},
		},
		{
			name:          "drops short and absent without backfill",
			results:       results("a", "b", "c", "d"),
			pages:         map[string]string{"a": "too short", "c": long, "d": long},
			count:         3,
			want:          []string{long},
			wantRequested: []string{"a", "b", "c"},
		},
		{
			name:          "exactly the minimum length is kept",
			results:       results("a", "b"),
			pages:         map[string]string{"a": strings.Repeat("y", DefaultMinLength-1), "b": long},
			count:         2,
			want:          []string{long},
			wantRequested: []string{"a", "b"},
		},
		{
			name:          "length counts characters not bytes",
			results:       results("a"),
			pages:         map[string]string{"a": strings.Repeat("伊", DefaultMinLength-1)},
			count:         1,
			want:          []string{},
			wantRequested: []string{"a"},
		},
		{
			name:          "zero count fetches nothing",
			results:       results("a"),
			pages:         map[string]string{"a": long},
			count:         0,
			want:          []string{},
			wantRequested: nil,
		},
		{
			name:          "no results",
			results:       nil,
			count:         3,
			want:          []string{},
			wantRequested: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{results: tt.results}
			c := &fakeContent{pages: tt.pages}
			a := New(s, c, zap.NewNop())

			got, err := a.GetSummaries(context.Background(), search.Query{Text: "q", Engine: search.EngineBing, Variant: 1}, tt.count)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRequested, c.requested)
			assert.LessOrEqual(t, len(got), max(tt.count, 0))
			assert.Equal(t, 1, s.calls)
		})
	}
}

func TestAggregator_SearchErrorPropagates(t *testing.T) {
	searchErr := &search.UnsupportedEngineError{Engine: "yahoo"}
	c := &fakeContent{}
	a := New(&fakeSearcher{err: searchErr}, c, zap.NewNop())

	got, err := a.GetSummaries(context.Background(), search.Query{Text: "x", Engine: "yahoo", Variant: 1}, 3)

	var engineErr *search.UnsupportedEngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Nil(t, got)
	assert.Empty(t, c.requested)
}

func TestAggregator_MinLengthOption(t *testing.T) {
	c := &fakeContent{pages: map[string]string{"a": "short", "b": "tiny"}}
	a := New(&fakeSearcher{results: results("a", "b")}, c, zap.NewNop(), WithMinLength(5))

	got, err := a.GetSummaries(context.Background(), search.Query{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, got)
}

func TestAggregator_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := &fakeContent{pages: map[string]string{"a": long}}
	a := New(&fakeSearcher{results: results("a", "b")}, c, zap.NewNop(), WithMetrics(m))

	_, err := a.GetSummaries(context.Background(), search.Query{}, 2)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummariesTotal.WithLabelValues("kept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummariesTotal.WithLabelValues("dropped")))
}

type pathRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pathRecorder) add(path string) {
	p.mu.Lock()
	p.paths = append(p.paths, path)
	p.mu.Unlock()
}

func (p *pathRecorder) get() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

// Baidu results page with three blocks, the second missing its anchor, and
// linked pages served by the same server.
func TestAggregator_BaiduEndToEnd(t *testing.T) {
	rec := &pathRecorder{}
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.RequestURI())
		switch r.URL.Path {
		case "/s":
			fmt.Fprintf(w, `<html><body>
<div class="result"><h3><a href="%s/page/one">First result</a></h3></div>
<div class="result"><h3>Second block has no anchor</h3></div>
<div class="result"><h3><a href="/link?url=two">Third block</a></h3></div>
</body></html>`, server.URL)
		case "/page/one":
			fmt.Fprintf(w, `<html><body><p>%s</p><span>first page</span></body></html>`, long)
		case "/link":
			fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, strings.Repeat("z", 60))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f, err := fetcher.New(fetcher.Config{}, zap.NewNop())
	require.NoError(t, err)

	searcher := search.NewSearcher(f, zap.NewNop(), search.WithEndpoints(search.Endpoints{
		Baidu:       server.URL + "/s",
		BaiduOrigin: server.URL,
	}))
	extractor := content.NewExtractor(f, content.Config{}, zap.NewNop())
	a := New(searcher, extractor, zap.NewNop())

	q := search.Query{Text: "test", Engine: search.EngineBaidu, Variant: 1}

	found, err := searcher.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "First result", found[0].Title)
	assert.Equal(t, server.URL+"/link?url=two", found[1].Link)

	got, err := a.GetSummaries(context.Background(), q, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{long + " first page", strings.Repeat("z", 60)}, got)
	// one results page (the second search is memoized) and two content fetches
	assert.Equal(t, []string{"/s?wd=test", "/page/one", "/link?url=two"}, rec.get())
}
