package detector

import (
	"strings"

	"github.com/brandscope/brandscope/internal/models"
)

const maxSentimentKeywords = 10

// SentimentDetector classifies response tone with fixed word lexicons. The
// classification is deterministic: the same text always yields the same
// result.
type SentimentDetector struct {
	positive map[string]bool
	negative map[string]bool
}

func NewSentimentDetector() *SentimentDetector {
	return &SentimentDetector{
		positive: positiveWords(),
		negative: negativeWords(),
	}
}

// Detect tallies lexicon hits over the text and derives a tone. A side is
// dominant when it has more than twice the hits of the other; anything else
// with hits on record is mixed.
func (d *SentimentDetector) Detect(text string) models.SentimentResult {
	tokens := strings.Fields(strings.ToLower(text))

	var posHits, negHits int
	seen := make(map[string]bool)
	keywords := []string{}

	for _, tok := range tokens {
		word := strings.Trim(tok, ".,!?;:()[]\"'`")
		if word == "" {
			continue
		}

		var hit bool
		switch {
		case d.positive[word]:
			posHits++
			hit = true
		case d.negative[word]:
			negHits++
			hit = true
		}
		if hit && !seen[word] && len(keywords) < maxSentimentKeywords {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	total := posHits + negHits
	tone := "neutral"
	switch {
	case total == 0:
		tone = "neutral"
	case posHits > 2*negHits:
		tone = "positive"
	case negHits > 2*posHits:
		tone = "negative"
	default:
		tone = "mixed"
	}

	return models.SentimentResult{
		Tone:       tone,
		Confidence: sentimentConfidence(total, len(tokens)),
		Keywords:   keywords,
	}
}

// sentimentConfidence scales hit density against text length. Short texts
// use a floor of one length unit so a single hit in a tweet-sized response
// still registers strongly.
func sentimentConfidence(hits, wordCount int) float64 {
	units := float64(wordCount) / 100
	if units < 1 {
		units = 1
	}
	conf := float64(hits) / units
	if conf > 1 {
		conf = 1
	}
	if conf < 0.1 {
		conf = 0.1
	}
	return conf
}
