package content

import (
	"regexp"
	"strings"
)

var sentenceBreak = regexp.MustCompile(`[.!?。！？]+`)

// Quality describes extracted text for diagnostics. It never filters content.
type Quality struct {
	Words             int
	VocabRichness     float64
	Sentences         int
	AvgSentenceLength float64
	// Score is 0..100; higher looks more like article prose.
	Score float64
}

// MeasureQuality scores text for debug logs only; summaries are filtered by
// length alone. The thresholds target article prose: a linked result page
// under 200 words or 5 sentences is usually a listing, login wall or
// landing page, and very low vocabulary richness marks repeated navigation
// text rather than an article body.
func MeasureQuality(text string) Quality {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Quality{}
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?\"'():;[]{}"))
		if w != "" {
			unique[w] = struct{}{}
		}
	}

	sentences := 0
	for _, s := range sentenceBreak.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	q := Quality{
		Words:             len(words),
		VocabRichness:     float64(len(unique)) / float64(len(words)),
		Sentences:         sentences,
		AvgSentenceLength: float64(len(words)) / float64(sentences),
	}
	q.Score = (0.6*lengthScore(q.Words) +
		0.2*richnessScore(q.VocabRichness) +
		0.2*sentenceScore(q.Sentences, q.AvgSentenceLength)) * 100
	return q
}

func lengthScore(words int) float64 {
	switch {
	case words < 200:
		return 0
	case words > 10000:
		return 0.3
	default:
		return 1
	}
}

func richnessScore(richness float64) float64 {
	switch {
	case richness < 0.25:
		return 0
	case richness > 0.6:
		return 0.8
	default:
		return 1
	}
}

func sentenceScore(sentences int, avgLength float64) float64 {
	if sentences < 5 {
		return 0
	}
	if avgLength < 10 || avgLength > 30 {
		return 0.7
	}
	return 1
}
