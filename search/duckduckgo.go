package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractLinks harvests every anchor of the page, in document order, with
// no filtering. It backs the DuckDuckGo lite variant and is low precision:
// navigation and footer links come back as results too.
func ExtractLinks(doc *goquery.Document) []SearchResult {
	var results []SearchResult

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		link, ok := s.Attr("href")
		if !ok {
			return
		}
		results = append(results, SearchResult{
			Title: strings.TrimSpace(s.Text()),
			Link:  link,
		})
	})

	return results
}
