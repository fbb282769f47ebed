package category

import (
	"testing"

	"github.com/brandscope/brandscope/internal/models"
)

func pricingPages() []models.PageContent {
	return []models.PageContent{
		{
			URL:     "https://example.com/pricing",
			Title:   "Pricing and plans",
			Content: "Our pricing starts with a free trial. Every plan includes billing support and flexible payment options at low cost.",
		},
		{
			URL:     "https://example.com/about",
			Title:   "About us",
			Content: "We are a small team that loves good coffee.",
		},
	}
}

func TestGenerateFindsPricing(t *testing.T) {
	g := NewGenerator()
	got := g.Generate(pricingPages())

	var pricing *models.Category
	for i := range got {
		if got[i].Name == "Pricing" {
			pricing = &got[i]
		}
	}
	if pricing == nil {
		t.Fatalf("no Pricing category in %+v", got)
	}
	if pricing.Confidence <= 0 || pricing.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0, 1]", pricing.Confidence)
	}
	if len(pricing.SourcePages) != 1 || pricing.SourcePages[0] != "https://example.com/pricing" {
		t.Errorf("SourcePages = %v, want only the pricing page", pricing.SourcePages)
	}
}

func TestGenerateSortedByConfidence(t *testing.T) {
	g := NewGenerator()
	g.MinConfidence = 0

	got := g.Generate(pricingPages())
	for i := 1; i < len(got); i++ {
		if got[i].Confidence > got[i-1].Confidence {
			t.Errorf("categories not sorted: %v before %v", got[i-1].Confidence, got[i].Confidence)
		}
	}
}

func TestGenerateMinConfidenceFilter(t *testing.T) {
	g := NewGenerator()
	g.MinConfidence = 0.99

	got := g.Generate(pricingPages())
	for _, c := range got {
		if c.Confidence < 0.99 {
			t.Errorf("category %q below floor: %v", c.Name, c.Confidence)
		}
	}
}

func TestGenerateMaxCategoriesTruncation(t *testing.T) {
	g := NewGenerator()
	g.MinConfidence = 0
	g.MaxCategories = 2

	pages := []models.PageContent{{
		URL:     "https://example.com",
		Content: "product pricing comparison solution industry problem integration support api cost feature",
	}}
	got := g.Generate(pages)
	if len(got) > 2 {
		t.Errorf("len = %d, want <= 2", len(got))
	}
}

func TestGenerateEmptyPages(t *testing.T) {
	g := NewGenerator()
	if got := g.Generate(nil); len(got) != 0 {
		t.Errorf("got %+v, want empty for no pages", got)
	}
}

func TestGenericCategories(t *testing.T) {
	got := GenericCategories()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, c := range got {
		if c.ID == "" || c.Name == "" {
			t.Errorf("incomplete category %+v", c)
		}
	}
}
