package search

import (
	"context"
	"strings"

	"websearch/fetcher"

	"github.com/PuerkitoBio/goquery"
)

type Engine string

const (
	EngineGoogle Engine = "google"
	EngineBing   Engine = "bing"
	EngineBaidu  Engine = "baidu"
)

// ParseEngine matches name case-insensitively against the supported engines.
func ParseEngine(name string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(name))); e {
	case EngineGoogle, EngineBing, EngineBaidu:
		return e, nil
	default:
		return "", &UnsupportedEngineError{Engine: name}
	}
}

// Query is one search request. Variant selects a sub-behavior of the
// engine: google variant 2 goes to the DuckDuckGo lite interface.
type Query struct {
	Text    string
	Engine  Engine
	Variant int
}

type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// PageFetcher is the subset of *fetcher.Fetcher the dispatcher needs.
type PageFetcher interface {
	Fetch(ctx context.Context, req fetcher.Request) (*goquery.Document, error)
}
