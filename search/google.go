package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const googleRedirectPrefix = "/url?q="

// ExtractGoogle reads the standard Google results page. Every div.g is a
// candidate: its first anchor is the link (with the /url?q= redirect
// stripped) and its first h3 the title. Candidates whose link does not
// start with http are dropped.
func ExtractGoogle(doc *goquery.Document) []SearchResult {
	var results []SearchResult

	doc.Find("div.g").Each(func(_ int, s *goquery.Selection) {
		link, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}
		link = strings.TrimPrefix(link, googleRedirectPrefix)
		if !strings.HasPrefix(link, "http") {
			return
		}

		heading := s.Find("h3").First()
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
