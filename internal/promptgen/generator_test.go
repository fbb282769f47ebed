package promptgen

import (
	"strings"
	"testing"

	"github.com/brandscope/brandscope/internal/models"
)

func testInput() models.RunInput {
	return models.RunInput{
		WebsiteURL: "https://acme.com",
		Country:    "Germany",
		Language:   "en",
	}
}

func TestProductName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://acme.com", "Acme"},
		{"https://www.acme.com/pricing", "Acme"},
		{"acme-tools.io", "Acme-tools"},
		{"https://shop.example.de", "Shop"},
		{"", "The product"},
	}

	for _, tt := range tests {
		if got := ProductName(tt.url); got != tt.want {
			t.Errorf("ProductName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"How much does Acme cost?", models.IntentHigh},
		{"Which plan should I choose?", models.IntentHigh},
		{"Is Acme available in Germany?", models.IntentMedium},
		{"Does Acme have an API?", models.IntentMedium},
		{"Tell me about Acme", models.IntentLow},
	}

	for _, tt := range tests {
		if got := ClassifyIntent(tt.question); got != tt.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestGenerateRendersPlaceholders(t *testing.T) {
	g := NewGenerator()
	cats := []models.Category{{ID: "cat-1", Name: "Pricing"}}

	prompts := g.Generate(testInput(), cats)
	if len(prompts) == 0 {
		t.Fatal("no prompts generated")
	}
	for _, p := range prompts {
		if strings.Contains(p.Question, "{") {
			t.Errorf("unrendered placeholder in %q", p.Question)
		}
		if p.CategoryID != "cat-1" {
			t.Errorf("CategoryID = %q, want cat-1", p.CategoryID)
		}
		if p.Language != "en" || p.Country != "Germany" {
			t.Errorf("locale not carried: %+v", p)
		}
		if p.Intent == "" {
			t.Errorf("missing intent on %q", p.Question)
		}
	}
}

func TestGenerateUnknownLanguageFallsBack(t *testing.T) {
	g := NewGenerator()
	input := testInput()
	input.Language = "xx"
	cats := []models.Category{{ID: "cat-1", Name: "Pricing"}}

	prompts := g.Generate(input, cats)
	if len(prompts) == 0 {
		t.Fatal("no prompts for unknown language")
	}
	if !strings.Contains(prompts[0].Question, "Acme") {
		t.Errorf("expected English fallback mentioning product, got %q", prompts[0].Question)
	}
}

func TestGenerateUnknownCategoryFallsBack(t *testing.T) {
	g := NewGenerator()
	cats := []models.Category{{ID: "cat-1", Name: "Something Exotic"}}

	prompts := g.Generate(testInput(), cats)
	if len(prompts) == 0 {
		t.Fatal("no prompts for unknown category")
	}
}

func TestGenerateGermanTemplates(t *testing.T) {
	g := NewGenerator()
	input := testInput()
	input.Language = "de"
	cats := []models.Category{{ID: "cat-1", Name: "Pricing"}}

	prompts := g.Generate(input, cats)
	if len(prompts) == 0 {
		t.Fatal("no German prompts")
	}
	found := false
	for _, p := range prompts {
		if strings.Contains(p.Question, "kostet") {
			found = true
		}
	}
	if !found {
		t.Error("expected a German pricing question")
	}
}

func TestGenerateMaxPerCategory(t *testing.T) {
	g := NewGenerator()
	g.MaxPerCategory = 2
	cats := []models.Category{{ID: "cat-1", Name: "Pricing"}}

	prompts := g.Generate(testInput(), cats)
	if len(prompts) != 2 {
		t.Errorf("len = %d, want 2", len(prompts))
	}
}
