package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const baiduRedirectPrefix = "/link?url="

// ExtractBaidu reads div.result blocks: first anchor for the link, h3 for
// the title. Baidu's relative redirect links are made absolute with origin;
// any other link not starting with http is dropped.
func ExtractBaidu(doc *goquery.Document, origin string) []SearchResult {
	var results []SearchResult

	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		link, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}

		heading := s.Find("h3").First()
		if heading.Length() == 0 {
			return
		}

		if strings.HasPrefix(link, baiduRedirectPrefix) {
			link = strings.TrimSuffix(origin, "/") + link
		}
		if !strings.HasPrefix(link, "http") {
			return
		}

		results = append(results, SearchResult{
			Title: strings.TrimSpace(heading.Text()),
			Link:  link,
		})
	})

	return results
}
