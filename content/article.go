package content

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var errEmptyDocument = errors.New("empty document")

func rootNode(doc *goquery.Document) (*html.Node, error) {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil, errEmptyDocument
	}
	return doc.Nodes[0], nil
}

func pageURLOf(doc *goquery.Document, pageURL string) (*url.URL, error) {
	if doc.Url != nil {
		return doc.Url, nil
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	return parsedURL, nil
}

func extractReadability(doc *goquery.Document, pageURL string) (string, error) {
	root, err := rootNode(doc)
	if err != nil {
		return "", err
	}
	parsedURL, err := pageURLOf(doc, pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(root, parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

func runTrafilatura(doc *goquery.Document, pageURL string) (*trafilatura.ExtractResult, error) {
	root, err := rootNode(doc)
	if err != nil {
		return nil, err
	}
	parsedURL, err := pageURLOf(doc, pageURL)
	if err != nil {
		return nil, err
	}

	result, err := trafilatura.ExtractDocument(root, trafilatura.Options{OriginalURL: parsedURL})
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}
	return result, nil
}

func extractTrafilatura(doc *goquery.Document, pageURL string) (string, error) {
	result, err := runTrafilatura(doc, pageURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.ContentText), nil
}

// extractMarkdown renders the main content found by trafilatura as Markdown.
func extractMarkdown(doc *goquery.Document, pageURL string) (string, error) {
	result, err := runTrafilatura(doc, pageURL)
	if err != nil {
		return "", err
	}
	if result.ContentNode == nil {
		return "", errEmptyDocument
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return "", fmt.Errorf("render content node: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("html to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
