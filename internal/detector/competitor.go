package detector

import (
	"regexp"
	"sort"
	"strings"

	"github.com/brandscope/brandscope/internal/models"
)

const (
	minCandidateLen       = 4
	maxCandidateLen       = 50
	maxCompetitorContexts = 3
)

// Capitalized multi-word phrase, the shape most organization names take in
// prose ("Rival Labs", "Acme Cloud Platform").
const capPhrase = `[A-Z][A-Za-z0-9&'.\-]*(?:\s+[A-Z][A-Za-z0-9&'.\-]*)+`

var competitorPatterns = []*regexp.Regexp{
	// comparison phrasing
	regexp.MustCompile(`(?i:compared to|vs\.?|versus|alternative to|instead of|rather than)\s+(` + capPhrase + `)`),
	regexp.MustCompile(`(` + capPhrase + `)\s+(?:is|are)\s+(?:a|an|another)\s+(?:good\s+|popular\s+|better\s+|alternative\s+|leading\s+|major\s+)?(?:option|choice|solution|company|service|platform|tool)`),
	regexp.MustCompile(`(?i:competitors|alternatives|similar\s+\w+|other\s+\w+)\s+(?i:include|are|like)\s+(` + capPhrase + `)`),
	// organization suffixes
	regexp.MustCompile(`([A-Z][A-Za-z0-9&'.\-]*(?:\s+[A-Z][A-Za-z0-9&'.\-]*)*\s+(?:Inc|LLC|Ltd|Corp|Company|Group|Solutions|Technologies|Systems|Software|Services))\b`),
	regexp.MustCompile(`(` + capPhrase + `)\s+(?:is|are|offers|provides|delivers|specializes)\s+(?:a|an|the)\s+\w+`),
}

// CompetitorDetector mines competitor names out of response text using
// phrasing heuristics and counts their mentions.
type CompetitorDetector struct {
	brand     string
	known     []string
	stopWords map[string]bool
}

// NewCompetitorDetector builds a detector. Known competitor names seed the
// candidate set and skip the structural filters that mined phrases must pass.
func NewCompetitorDetector(brand string, known []string) *CompetitorDetector {
	return &CompetitorDetector{
		brand:     strings.ToLower(strings.TrimSpace(brand)),
		known:     known,
		stopWords: candidateStopWords(),
	}
}

// Detect returns all competitors found in the response, most mentioned
// first. Each entry carries up to three sentence contexts and the URLs of
// citations whose title or snippet mentions the competitor.
func (d *CompetitorDetector) Detect(text string, citations []models.Citation) []models.CompetitorMention {
	candidates := d.collectCandidates(text)
	lower := strings.ToLower(text)
	sentences := splitSentences(text)

	var mentions []models.CompetitorMention
	for _, name := range candidates {
		nameLower := strings.ToLower(name)
		if nameLower == d.brand {
			continue
		}

		count := countWholeWord(lower, nameLower)
		if count == 0 {
			continue
		}

		mentions = append(mentions, models.CompetitorMention{
			Name:      name,
			Count:     count,
			Contexts:  sentenceContexts(sentences, nameLower),
			Citations: citationURLs(citations, nameLower),
		})
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Count > mentions[j].Count
	})
	return mentions
}

// collectCandidates merges known competitor names with phrases mined from
// the text, de-duplicated case-insensitively in first-seen order.
func (d *CompetitorDetector) collectCandidates(text string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}

	for _, name := range d.known {
		add(name)
	}

	for _, re := range competitorPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if d.validCandidate(candidate) {
				add(candidate)
			}
		}
	}
	return out
}

// validCandidate rejects mined phrases that are too short, too long, or
// start with (or entirely consist of) common stop words. The patterns are
// greedy enough that sentence fragments like "The Best Option" get through
// without this filter.
func (d *CompetitorDetector) validCandidate(name string) bool {
	if len(name) < minCandidateLen || len(name) >= maxCandidateLen {
		return false
	}
	words := strings.Fields(name)
	if len(words) < 2 {
		return false
	}
	if d.stopWords[strings.ToLower(words[0])] {
		return false
	}
	if d.stopWords[strings.ToLower(name)] {
		return false
	}
	return true
}

func countWholeWord(lower, nameLower string) int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(nameLower) + `\b`)
	return len(re.FindAllStringIndex(lower, -1))
}

func sentenceContexts(sentences []string, nameLower string) []string {
	contexts := []string{}
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), nameLower) {
			contexts = append(contexts, s)
			if len(contexts) == maxCompetitorContexts {
				break
			}
		}
	}
	return contexts
}

func citationURLs(citations []models.Citation, nameLower string) []string {
	urls := []string{}
	for _, c := range citations {
		haystack := strings.ToLower(c.Title + " " + c.Snippet)
		if strings.Contains(haystack, nameLower) {
			urls = append(urls, c.URL)
		}
	}
	return urls
}
