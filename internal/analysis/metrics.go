package analysis

import (
	"time"

	"github.com/brandscope/brandscope/internal/models"
)

// CategoryMetrics aggregates the analyses of one category's prompts into a
// visibility score and rate metrics. A category with no analyzed prompts
// yields all zeros.
func (e *Engine) CategoryMetrics(categoryID string, prompts []models.Prompt, analyses []models.PromptAnalysis) models.CategoryMetrics {
	byPrompt := indexAnalyses(analyses)

	metrics := models.CategoryMetrics{
		CategoryID: categoryID,
		Timestamp:  time.Now().UTC(),
	}

	var categoryPrompts []models.Prompt
	for _, p := range prompts {
		if p.CategoryID == categoryID {
			categoryPrompts = append(categoryPrompts, p)
		}
	}
	if len(categoryPrompts) == 0 {
		return metrics
	}

	var (
		score          float64
		totalCitations int
		mentioned      int
		withCompetitor int
		matched        int
	)
	for _, p := range categoryPrompts {
		a, ok := byPrompt[p.ID]
		if !ok {
			continue
		}
		matched++

		score += exactWeight*float64(a.BrandMentions.Exact) +
			fuzzyWeight*float64(a.BrandMentions.Fuzzy) +
			citationWeight*float64(a.CitationCount) +
			toneBonus(a.Sentiment.Tone)
		totalCitations += a.CitationCount
		if a.MentionCount > 0 {
			mentioned++
		}
		if len(a.Competitors) > 0 {
			withCompetitor++
		}
	}
	if matched == 0 {
		return metrics
	}

	promptCount := float64(len(categoryPrompts))
	metrics.VisibilityScore = clamp(score/(promptCount*maxPromptScore)*100, 0, 100)
	metrics.CitationRate = float64(totalCitations) / promptCount
	metrics.BrandMentionRate = float64(mentioned) / promptCount
	metrics.CompetitorMentionRate = float64(withCompetitor) / promptCount
	return metrics
}

// CompetitiveAnalysis computes run-wide share of voice. Prompts without an
// analysis count as missing-brand prompts; shares are zero when nobody is
// mentioned at all.
func (e *Engine) CompetitiveAnalysis(prompts []models.Prompt, analyses []models.PromptAnalysis) models.CompetitiveAnalysis {
	byPrompt := indexAnalyses(analyses)

	var brandTotal int
	competitorTotals := make(map[string]int)
	result := models.CompetitiveAnalysis{
		CompetitorShares:    map[string]float64{},
		WhiteSpaceTopics:    []string{},
		DominatedPrompts:    []string{},
		MissingBrandPrompts: []string{},
		Timestamp:           time.Now().UTC(),
	}

	for _, p := range prompts {
		a, ok := byPrompt[p.ID]
		if !ok {
			result.MissingBrandPrompts = append(result.MissingBrandPrompts, p.ID)
			continue
		}

		brandTotal += a.MentionCount
		competitorCount := 0
		for _, c := range a.Competitors {
			competitorTotals[c.Name] += c.Count
			competitorCount += c.Count
		}

		if a.MentionCount == 0 {
			result.MissingBrandPrompts = append(result.MissingBrandPrompts, p.ID)
			if competitorCount > 0 {
				result.DominatedPrompts = append(result.DominatedPrompts, p.ID)
			} else {
				// Topics are surfaced by question text so dashboards can
				// show them without a prompt lookup.
				result.WhiteSpaceTopics = append(result.WhiteSpaceTopics, p.Question)
			}
		}
	}

	competitorSum := 0
	for _, n := range competitorTotals {
		competitorSum += n
	}
	total := brandTotal + competitorSum
	if total > 0 {
		result.BrandShare = float64(brandTotal) / float64(total) * 100
		for name, n := range competitorTotals {
			result.CompetitorShares[name] = float64(n) / float64(total) * 100
		}
	}
	return result
}

// Summary rolls prompts, analyses and category metrics up into one
// dashboard row for the run.
func (e *Engine) Summary(runID string, prompts []models.Prompt, analyses []models.PromptAnalysis, categoryMetrics []models.CategoryMetrics, competitive models.CompetitiveAnalysis) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		RunID:        runID,
		TotalPrompts: len(prompts),
		BrandShare:   competitive.BrandShare,
		Timestamp:    time.Now().UTC(),
	}

	for _, a := range analyses {
		summary.AnalyzedPrompts++
		summary.TotalCitations += a.CitationCount
		if a.IsMentioned {
			summary.MentionedPrompts++
		}
		if a.IsCited {
			summary.CitedPrompts++
		}
	}

	if len(categoryMetrics) > 0 {
		var sum float64
		for _, m := range categoryMetrics {
			sum += m.VisibilityScore
		}
		summary.AvgVisibility = sum / float64(len(categoryMetrics))
	}
	return summary
}

func indexAnalyses(analyses []models.PromptAnalysis) map[string]models.PromptAnalysis {
	byPrompt := make(map[string]models.PromptAnalysis, len(analyses))
	for _, a := range analyses {
		byPrompt[a.PromptID] = a
	}
	return byPrompt
}

func toneBonus(tone string) float64 {
	switch tone {
	case "positive":
		return sentimentBonus
	case "negative":
		return -sentimentBonus
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
