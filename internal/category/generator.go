// Package category derives topical question categories from scraped site
// content by matching fixed keyword templates against page text.
package category

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/brandscope/brandscope/internal/models"
)

const (
	// DefaultMinConfidence drops templates with barely any keyword signal.
	DefaultMinConfidence = 0.3

	// DefaultMaxCategories bounds the result so downstream prompt
	// generation stays manageable.
	DefaultMaxCategories = 10

	pageFractionWeight = 0.3
)

type template struct {
	name        string
	description string
	keywords    []string
}

// templates is the fixed catalog of category shapes customers ask about.
var templates = []template{
	{
		name:        "Product Information",
		description: "Questions about product features, capabilities and specifications",
		keywords:    []string{"product", "feature", "features", "capability", "specification", "functionality", "offering", "catalog"},
	},
	{
		name:        "Pricing",
		description: "Questions about cost, plans, subscriptions and billing",
		keywords:    []string{"price", "pricing", "cost", "plan", "subscription", "billing", "payment", "fee", "trial", "free"},
	},
	{
		name:        "Comparison",
		description: "Questions comparing the brand against alternatives and competitors",
		keywords:    []string{"compare", "comparison", "versus", "alternative", "competitor", "better", "best", "difference"},
	},
	{
		name:        "Use Cases",
		description: "Questions about applications, scenarios and workflows",
		keywords:    []string{"use case", "solution", "workflow", "scenario", "application", "example", "customer", "case study"},
	},
	{
		name:        "Industry",
		description: "Questions about market position, trends and sector fit",
		keywords:    []string{"industry", "market", "sector", "trend", "enterprise", "business", "vertical", "b2b"},
	},
	{
		name:        "Problems and Solutions",
		description: "Questions about pain points the product addresses",
		keywords:    []string{"problem", "challenge", "issue", "solve", "fix", "improve", "optimize", "pain"},
	},
	{
		name:        "Integration",
		description: "Questions about APIs, connectors and compatibility",
		keywords:    []string{"integration", "integrate", "api", "connector", "plugin", "compatible", "sync", "webhook"},
	},
	{
		name:        "Support",
		description: "Questions about help, documentation and onboarding",
		keywords:    []string{"support", "help", "documentation", "docs", "onboarding", "training", "faq", "contact"},
	},
}

// Generator scores the template catalog against crawled pages.
type Generator struct {
	MinConfidence float64
	MaxCategories int
}

func NewGenerator() *Generator {
	return &Generator{
		MinConfidence: DefaultMinConfidence,
		MaxCategories: DefaultMaxCategories,
	}
}

// Generate scores every template against the pages and returns surviving
// categories sorted by confidence descending.
//
// Confidence per template is the fraction of its keywords found anywhere in
// the combined content, plus a weighted fraction of pages containing at
// least one keyword. A template nobody's content touches scores zero and is
// dropped.
func (g *Generator) Generate(pages []models.PageContent) []models.Category {
	combined := combinedText(pages)

	var out []models.Category
	for _, tpl := range templates {
		hits := 0
		for _, kw := range tpl.keywords {
			if strings.Contains(combined, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		sourcePages := pagesWithKeywords(pages, tpl.keywords)

		confidence := float64(hits) / float64(len(tpl.keywords))
		if len(pages) > 0 {
			confidence += pageFractionWeight * float64(len(sourcePages)) / float64(len(pages))
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence < g.MinConfidence {
			continue
		}

		out = append(out, models.Category{
			ID:          uuid.NewString(),
			Name:        tpl.name,
			Description: tpl.description,
			Confidence:  confidence,
			SourcePages: sourcePages,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if g.MaxCategories > 0 && len(out) > g.MaxCategories {
		out = out[:g.MaxCategories]
	}
	return out
}

// GenericCategories returns a minimal seed set for sites whose content
// matches nothing in the catalog.
func GenericCategories() []models.Category {
	names := []struct{ name, desc string }{
		{"Product Information", "General questions about the product"},
		{"Pricing", "Questions about cost and plans"},
		{"Comparison", "Questions comparing against alternatives"},
	}
	out := make([]models.Category, 0, len(names))
	for _, n := range names {
		out = append(out, models.Category{
			ID:          uuid.NewString(),
			Name:        n.name,
			Description: n.desc,
			Confidence:  0.5,
			SourcePages: []string{},
		})
	}
	return out
}

func combinedText(pages []models.PageContent) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(strings.ToLower(p.Title))
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(p.Headings))
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(p.Content))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func pagesWithKeywords(pages []models.PageContent, keywords []string) []string {
	urls := []string{}
	for _, p := range pages {
		text := strings.ToLower(p.Title + " " + p.Headings + " " + p.Content)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				urls = append(urls, p.URL)
				break
			}
		}
	}
	return urls
}
