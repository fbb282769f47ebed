// Package analysis turns executed prompts and their responses into
// visibility metrics: per-prompt detection results, per-category scores and
// a run-wide competitive summary.
package analysis

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/brandscope/brandscope/internal/detector"
	"github.com/brandscope/brandscope/internal/models"
)

const (
	exactWeight    = 10.0
	fuzzyWeight    = 5.0
	citationWeight = 2.0
	sentimentBonus = 5.0
	maxPromptScore = 50.0
)

// Engine analyzes responses for one brand. All methods are pure with
// respect to their inputs, so recomputing an analysis yields identical
// results.
type Engine struct {
	brand       string
	brandDomain string
	brands      *detector.BrandDetector
	sentiments  *detector.SentimentDetector
	competitors *detector.CompetitorDetector
}

// NewEngine builds an engine for a brand. The website URL anchors
// domain-based citation attribution; known competitor names seed the
// competitor detector.
func NewEngine(brand, websiteURL string, knownCompetitors []string, fuzzyThreshold float64) *Engine {
	return &Engine{
		brand:       strings.ToLower(strings.TrimSpace(brand)),
		brandDomain: primaryDomain(websiteURL),
		brands:      detector.NewBrandDetector(brand, fuzzyThreshold),
		sentiments:  detector.NewSentimentDetector(),
		competitors: detector.NewCompetitorDetector(brand, knownCompetitors),
	}
}

// AnalyzeAll runs per-pair analysis for every prompt with a matching
// response. Prompts without a response are skipped, not zero-filled.
func (e *Engine) AnalyzeAll(prompts []models.Prompt, responses []models.LLMResponse) []models.PromptAnalysis {
	byPrompt := make(map[string]models.LLMResponse, len(responses))
	for _, r := range responses {
		byPrompt[r.PromptID] = r
	}

	analyses := make([]models.PromptAnalysis, 0, len(prompts))
	for _, p := range prompts {
		resp, ok := byPrompt[p.ID]
		if !ok {
			continue
		}
		analyses = append(analyses, e.AnalyzePair(p, resp))
	}
	return analyses
}

// AnalyzePair analyzes a single prompt and its response. The analysis
// timestamp is taken from the response so the result is a pure function of
// its inputs.
func (e *Engine) AnalyzePair(prompt models.Prompt, resp models.LLMResponse) models.PromptAnalysis {
	mentions := e.brands.Detect(resp.OutputText)
	competitors := e.competitors.Detect(resp.OutputText, resp.Citations)
	sentiment := e.sentiments.Detect(resp.OutputText)
	brandCitations := e.attributeCitations(resp)

	urls := make([]string, 0, len(resp.Citations))
	for _, c := range resp.Citations {
		urls = append(urls, c.URL)
	}

	mentionCount := mentions.Exact + mentions.Fuzzy
	return models.PromptAnalysis{
		PromptID:          prompt.ID,
		BrandMentions:     mentions,
		CitationCount:     len(resp.Citations),
		CitationURLs:      urls,
		BrandCitations:    len(brandCitations),
		Competitors:       competitors,
		Sentiment:         sentiment,
		IsMentioned:       mentionCount > 0,
		MentionCount:      mentionCount,
		IsCited:           len(brandCitations) > 0,
		CitationDetails:   brandCitations,
		CompetitorDetails: competitors,
		Timestamp:         resp.Timestamp,
	}
}

// attributeCitations decides which citations belong to the brand. A
// citation matches via text when its title or snippet names the brand, and
// via url when the address contains the space-compressed brand name or
// resolves to the brand's own primary domain.
func (e *Engine) attributeCitations(resp models.LLMResponse) []models.BrandCitation {
	noSpace := strings.ReplaceAll(e.brand, " ", "")
	out := []models.BrandCitation{}

	for _, c := range resp.Citations {
		titleSnippet := strings.ToLower(c.Title + ". " + c.Snippet)
		urlLower := strings.ToLower(c.URL)

		switch {
		case e.brand != "" && strings.Contains(titleSnippet, e.brand):
			out = append(out, models.BrandCitation{
				URL:        c.URL,
				Context:    matchingSentence(titleSnippet, e.brand),
				MatchedVia: "text",
			})
		case noSpace != "" && strings.Contains(urlLower, noSpace),
			e.brandDomain != "" && primaryDomain(c.URL) == e.brandDomain:
			out = append(out, models.BrandCitation{
				URL:        c.URL,
				Context:    urlContext(resp.OutputText, c.URL),
				MatchedVia: "url",
			})
		}
	}
	return out
}

// primaryDomain reduces a URL to its registrable domain: apex plus public
// suffix. Unparseable input yields "".
func primaryDomain(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return ""
	}
	return domain
}

// matchingSentence returns the first sentence of text containing needle.
func matchingSentence(text, needle string) string {
	for _, s := range splitSentences(text) {
		if strings.Contains(s, needle) {
			return s
		}
	}
	return ""
}

// urlContext finds prose around a cited URL in the response body: the
// markdown link label when the URL appears as a link, otherwise the
// sentence containing the URL.
func urlContext(body, citedURL string) string {
	lower := strings.ToLower(body)
	target := strings.ToLower(citedURL)

	if idx := strings.Index(lower, "]("+target); idx >= 0 {
		if open := strings.LastIndex(lower[:idx], "["); open >= 0 {
			return body[open+1 : idx]
		}
	}
	return matchingSentence(lower, target)
}

// sentenceEndRe splits on terminal punctuation followed by whitespace so
// dots inside URLs and domain names do not break a sentence.
var sentenceEndRe = regexp.MustCompile(`[.!?]+(\s+|$)`)

func splitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
