package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractBing reads li.b_algo blocks: the first anchor carrying an href is
// the link and the block's h2 the title. Links not starting with http are
// dropped.
func ExtractBing(doc *goquery.Document) []SearchResult {
	var results []SearchResult

	doc.Find("li.b_algo").Each(func(_ int, s *goquery.Selection) {
		link, ok := s.Find("a[href]").First().Attr("href")
		if !ok || !strings.HasPrefix(link, "http") {
			return
		}

		heading := s.Find("h2").First()
		if heading.Length() == 0 {
			return
		}

		results = append(results, SearchResult{
			Title: strings.TrimSpace(heading.Text()),
			Link:  link,
		})
	})

	return results
}
