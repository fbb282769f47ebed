package detector

import (
	"regexp"
	"strings"

	"github.com/brandscope/brandscope/internal/models"
	"github.com/brandscope/brandscope/internal/textmatch"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity for a fuzzy brand hit.
	DefaultFuzzyThreshold = 0.7

	contextRadius = 100
	maxContexts   = 5
)

var markdownLabelRe = regexp.MustCompile(`\[([^\]]*)\]`)

// BrandDetector finds exact and fuzzy brand mentions in LLM response text.
type BrandDetector struct {
	brand     string
	threshold float64
}

// NewBrandDetector builds a detector for the given brand name. A threshold
// of zero selects DefaultFuzzyThreshold.
func NewBrandDetector(brand string, threshold float64) *BrandDetector {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &BrandDetector{
		brand:     strings.ToLower(strings.TrimSpace(brand)),
		threshold: threshold,
	}
}

// Detect scans text for the brand and returns exact and fuzzy counts plus
// up to five surrounding context snippets.
func (d *BrandDetector) Detect(text string) models.BrandMentions {
	if d.brand == "" || text == "" {
		return models.BrandMentions{Contexts: []string{}}
	}

	lower := strings.ToLower(text)
	noSpace := strings.ReplaceAll(d.brand, " ", "")

	exact, exactSpans := d.countExact(lower)
	mdCount, mdSpans := d.countMarkdownLabels(lower, noSpace)
	exact += mdCount

	fuzzy, fuzzyContexts := d.countFuzzy(lower, noSpace)

	contexts := collectContexts(lower, append(exactSpans, mdSpans...), fuzzyContexts, d.brand, noSpace)

	return models.BrandMentions{
		Exact:    exact,
		Fuzzy:    fuzzy,
		Contexts: contexts,
	}
}

// countExact counts whole-word occurrences of the brand in lowercased text.
// Multi-word brands are matched both as the literal phrase and with flexible
// whitespace between words; the larger count wins so reflowed text is not
// double counted.
func (d *BrandDetector) countExact(lower string) (int, [][]int) {
	words := strings.Fields(d.brand)
	if len(words) == 1 {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(d.brand) + `\b`)
		spans := re.FindAllStringIndex(lower, -1)
		return len(spans), spans
	}

	literal := regexp.MustCompile(`\b` + regexp.QuoteMeta(d.brand) + `\b`)
	literalSpans := literal.FindAllStringIndex(lower, -1)

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = regexp.QuoteMeta(w)
	}
	flexible := regexp.MustCompile(`\b` + strings.Join(parts, `\s+`) + `\b`)
	flexibleSpans := flexible.FindAllStringIndex(lower, -1)

	if len(flexibleSpans) >= len(literalSpans) {
		return len(flexibleSpans), flexibleSpans
	}
	return len(literalSpans), literalSpans
}

// countMarkdownLabels finds the space-compressed brand inside markdown link
// labels, which catches mentions like [AcmeCorp](https://...).
func (d *BrandDetector) countMarkdownLabels(lower, noSpace string) (int, [][]int) {
	if noSpace == d.brand {
		// Single-word brand: the whole-word pass already covers labels.
		return 0, nil
	}

	count := 0
	var spans [][]int
	for _, m := range markdownLabelRe.FindAllStringSubmatchIndex(lower, -1) {
		label := lower[m[2]:m[3]]
		compact := strings.ReplaceAll(label, " ", "")
		if strings.Contains(compact, noSpace) {
			count++
			spans = append(spans, []int{m[0], m[1]})
		}
	}
	return count, spans
}

// countFuzzy counts near-miss mentions. Tokens (or token windows, for
// multi-word brands) are compared against the brand and its space-compressed
// form; similarity must reach the threshold without being an exact match,
// since exact matches are already counted.
func (d *BrandDetector) countFuzzy(lower, noSpace string) (int, []string) {
	tokens := strings.Fields(lower)
	words := strings.Fields(d.brand)

	count := 0
	var contexts []string

	if len(words) == 1 {
		for _, tok := range tokens {
			cleaned := stripNonWord(tok)
			if cleaned == "" {
				continue
			}
			if d.fuzzyHit(cleaned, noSpace) {
				count++
				contexts = append(contexts, cleaned)
			}
		}
		return count, contexts
	}

	n := len(words)
	for i := 0; i+n <= len(tokens); i++ {
		window := make([]string, n)
		for j := 0; j < n; j++ {
			window[j] = stripNonWord(tokens[i+j])
		}
		phrase := strings.Join(window, " ")
		compact := strings.Join(window, "")
		if d.fuzzyHit(phrase, noSpace) || d.fuzzyHit(compact, noSpace) {
			count++
			contexts = append(contexts, phrase)
			i += n - 1
		}
	}
	return count, contexts
}

func (d *BrandDetector) fuzzyHit(candidate, noSpace string) bool {
	for _, target := range []string{d.brand, noSpace} {
		sim := textmatch.Similarity(candidate, target)
		if sim >= d.threshold && sim < 1 {
			return true
		}
	}
	return false
}

// collectContexts assembles context snippets from match spans, fuzzy phrase
// windows and full sentences mentioning the brand, deduplicated and capped.
func collectContexts(lower string, spans [][]int, fuzzyContexts []string, brand, noSpace string) []string {
	seen := make(map[string]bool)
	contexts := []string{}

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || len(contexts) >= maxContexts {
			return
		}
		seen[s] = true
		contexts = append(contexts, s)
	}

	for _, span := range spans {
		start := span[0] - contextRadius
		if start < 0 {
			start = 0
		}
		end := span[1] + contextRadius
		if end > len(lower) {
			end = len(lower)
		}
		add(trimPunct(lower[start:end]))
	}

	for _, c := range fuzzyContexts {
		add(c)
	}

	for _, sentence := range splitSentences(lower) {
		if strings.Contains(sentence, brand) || strings.Contains(sentence, noSpace) {
			add(sentence)
		}
	}

	return contexts
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

func stripNonWord(s string) string {
	return nonWordRe.ReplaceAllString(s, "")
}

func trimPunct(s string) string {
	return strings.Trim(s, " \t\n.,;:!?-")
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
