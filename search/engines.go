package search

import (
	"fmt"
	"net/http"
	"net/url"

	"websearch/fetcher"

	"github.com/PuerkitoBio/goquery"
)

// Strategy identifies how a results page is turned into SearchResults.
type Strategy int

const (
	StrategyGoogle Strategy = iota + 1
	StrategyDuckDuckGoLite
	StrategyBing
	StrategyBaidu
)

func (s Strategy) String() string {
	switch s {
	case StrategyGoogle:
		return "google"
	case StrategyDuckDuckGoLite:
		return "duckduckgo_lite"
	case StrategyBing:
		return "bing"
	case StrategyBaidu:
		return "baidu"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Endpoints holds the provider URLs. Tests point them at a local server.
type Endpoints struct {
	Google         string
	DuckDuckGoLite string
	Bing           string
	Baidu          string
	// BaiduOrigin is prepended to Baidu's relative redirect links.
	BaiduOrigin string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Google:         "https://www.google.com/search",
		DuckDuckGoLite: "https://lite.duckduckgo.com/lite/",
		Bing:           "https://www.bing.com/search",
		Baidu:          "https://www.baidu.com/s",
		BaiduOrigin:    "https://www.baidu.com",
	}
}

// withDefaults fills every empty field from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.Google == "" {
		e.Google = d.Google
	}
	if e.DuckDuckGoLite == "" {
		e.DuckDuckGoLite = d.DuckDuckGoLite
	}
	if e.Bing == "" {
		e.Bing = d.Bing
	}
	if e.Baidu == "" {
		e.Baidu = d.Baidu
	}
	if e.BaiduOrigin == "" {
		e.BaiduOrigin = d.BaiduOrigin
	}
	return e
}

// plan is a validated query: the request to issue and how to read the answer.
type plan struct {
	engine   Engine
	strategy Strategy
	request  fetcher.Request
}

// resolve maps (engine, variant) to exactly one strategy. Every engine
// validates its variant; bing and baidu only have variant 1.
func (e Endpoints) resolve(q Query) (plan, error) {
	engine, err := ParseEngine(string(q.Engine))
	if err != nil {
		return plan{}, err
	}

	switch engine {
	case EngineGoogle:
		switch q.Variant {
		case 1:
			return getPlan(engine, StrategyGoogle, e.Google, "q", q.Text)
		case 2:
			return plan{
				engine:   engine,
				strategy: StrategyDuckDuckGoLite,
				request: fetcher.Request{
					URL:    e.DuckDuckGoLite,
					Method: http.MethodPost,
					Form:   url.Values{"q": {q.Text}},
				},
			}, nil
		}
	case EngineBing:
		if q.Variant == 1 {
			return getPlan(engine, StrategyBing, e.Bing, "q", q.Text)
		}
	case EngineBaidu:
		if q.Variant == 1 {
			return getPlan(engine, StrategyBaidu, e.Baidu, "wd", q.Text)
		}
	}

	return plan{}, &UnsupportedVariantError{Engine: engine, Variant: q.Variant}
}

func getPlan(engine Engine, strategy Strategy, endpoint, param, text string) (plan, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return plan{}, fmt.Errorf("parse %s endpoint: %w", engine, err)
	}
	values := u.Query()
	values.Set(param, text)
	u.RawQuery = values.Encode()

	return plan{
		engine:   engine,
		strategy: strategy,
		request:  fetcher.Request{URL: u.String(), Method: http.MethodGet},
	}, nil
}

// extract runs the extractor selected by strategy over doc.
func (e Endpoints) extract(strategy Strategy, doc *goquery.Document) []SearchResult {
	switch strategy {
	case StrategyGoogle:
		return ExtractGoogle(doc)
	case StrategyDuckDuckGoLite:
		return ExtractLinks(doc)
	case StrategyBing:
		return ExtractBing(doc)
	case StrategyBaidu:
		return ExtractBaidu(doc, e.BaiduOrigin)
	default:
		panic(fmt.Sprintf("search: unhandled %s", strategy))
	}
}
