package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"websearch/fetcher"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const DefaultMaxLength = 8000

type Mode string

const (
	// ModeText joins the text of every p and span element.
	ModeText        Mode = "text"
	ModeReadability Mode = "readability"
	ModeTrafilatura Mode = "trafilatura"
	ModeMarkdown    Mode = "markdown"
)

var ErrUnknownMode = errors.New("unknown content mode")

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeText, nil
	case ModeText, ModeReadability, ModeTrafilatura, ModeMarkdown:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type PageFetcher interface {
	Fetch(ctx context.Context, req fetcher.Request) (*goquery.Document, error)
}

type Config struct {
	Mode      Mode
	MaxLength int
}

// Extractor turns a page into a bounded block of readable text.
type Extractor struct {
	fetcher   PageFetcher
	mode      Mode
	maxLength int
	logger    *zap.Logger
}

func NewExtractor(f PageFetcher, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.Mode == "" {
		cfg.Mode = ModeText
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	return &Extractor{
		fetcher:   f,
		mode:      cfg.Mode,
		maxLength: cfg.MaxLength,
		logger:    logger,
	}
}

// GetContent fetches pageURL and returns its text trimmed to the centered
// window. Every failure is logged and reported as absent content, never as
// an error.
func (e *Extractor) GetContent(ctx context.Context, pageURL string) (string, bool) {
	logger := fetcher.ContextLogger(ctx, e.logger)

	doc, err := e.fetcher.Fetch(ctx, fetcher.Request{URL: pageURL, Method: http.MethodGet})
	if err != nil {
		logger.Error("failed to fetch content", zap.String("url", pageURL), zap.Error(err))
		return "", false
	}

	text, err := e.extract(doc, pageURL)
	if err != nil {
		logger.Error("failed to extract content",
			zap.String("url", pageURL),
			zap.String("mode", string(e.mode)),
			zap.Error(err))
		return "", false
	}

	trimmed := TrimCentered(text, e.maxLength)
	if ce := logger.Check(zap.DebugLevel, "content extracted"); ce != nil {
		q := MeasureQuality(trimmed)
		ce.Write(
			zap.String("url", pageURL),
			zap.String("mode", string(e.mode)),
			zap.Int("text_length", len([]rune(text))),
			zap.Int("trimmed_length", len([]rune(trimmed))),
			zap.Int("word_count", q.Words),
			zap.Float64("vocab_richness", q.VocabRichness),
			zap.Int("sentence_count", q.Sentences),
			zap.Float64("quality_score", q.Score))
	}

	return trimmed, true
}

func (e *Extractor) extract(doc *goquery.Document, pageURL string) (string, error) {
	switch e.mode {
	case ModeText:
		return ExtractText(doc), nil
	case ModeReadability:
		return extractReadability(doc, pageURL)
	case ModeTrafilatura:
		return extractTrafilatura(doc, pageURL)
	case ModeMarkdown:
		return extractMarkdown(doc, pageURL)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, e.mode)
	}
}

// ExtractText concatenates the text of all p and span elements in document
// order, separated by single spaces. Nested elements contribute their text
// once per matching ancestor.
func ExtractText(doc *goquery.Document) string {
	var texts []string
	doc.Find("p, span").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return strings.Join(texts, " ")
}

// TrimCentered returns text unchanged when it has at most maxLength runes,
// otherwise the maxLength runes starting at (len-maxLength)/2. Boilerplate
// gathers at both ends of a page, so the middle is kept.
func TrimCentered(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	start := (len(runes) - maxLength) / 2
	return string(runes[start : start+maxLength])
}
