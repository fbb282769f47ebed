package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/brandscope/brandscope/internal/models"
)

func testEngine() *Engine {
	return NewEngine("Acme", "https://acme.com", nil, 0.7)
}

func fixedTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzePairBrandAndCitation(t *testing.T) {
	e := testEngine()
	prompt := models.Prompt{ID: "p1", Question: "Who offers widgets?"}
	resp := models.LLMResponse{
		PromptID:   "p1",
		OutputText: "Acme is great. acme ACME",
		Citations: []models.Citation{
			{URL: "https://acme.com/about", Title: "About Acme", Snippet: "company info"},
		},
		Timestamp: fixedTime(),
	}

	got := e.AnalyzePair(prompt, resp)

	if got.BrandMentions.Exact != 3 {
		t.Errorf("Exact = %d, want 3", got.BrandMentions.Exact)
	}
	if got.CitationCount != 1 {
		t.Errorf("CitationCount = %d, want 1", got.CitationCount)
	}
	if !got.IsCited {
		t.Error("IsCited = false, want true")
	}
	if !got.IsMentioned || got.MentionCount != 3 {
		t.Errorf("IsMentioned=%v MentionCount=%d, want true/3", got.IsMentioned, got.MentionCount)
	}
}

func TestAnalyzePairIdempotent(t *testing.T) {
	e := testEngine()
	prompt := models.Prompt{ID: "p1"}
	resp := models.LLMResponse{
		PromptID:   "p1",
		OutputText: "Acme competes with Rival Labs. Rival Labs is a popular option.",
		Citations:  []models.Citation{{URL: "https://example.com", Title: "Acme coverage"}},
		Timestamp:  fixedTime(),
	}

	first := e.AnalyzePair(prompt, resp)
	second := e.AnalyzePair(prompt, resp)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeAllSkipsUnmatchedPrompts(t *testing.T) {
	e := testEngine()
	prompts := []models.Prompt{{ID: "p1"}, {ID: "p2"}}
	responses := []models.LLMResponse{{PromptID: "p2", OutputText: "Acme", Timestamp: fixedTime()}}

	got := e.AnalyzeAll(prompts, responses)
	if len(got) != 1 || got[0].PromptID != "p2" {
		t.Errorf("got %+v, want only p2 analyzed", got)
	}
}

func TestAttributeCitationsViaText(t *testing.T) {
	e := testEngine()
	resp := models.LLMResponse{
		OutputText: "Some answer.",
		Citations: []models.Citation{
			{URL: "https://news.example.com/story", Title: "Why Acme wins", Snippet: "analysis"},
		},
	}

	got := e.attributeCitations(resp)
	if len(got) != 1 {
		t.Fatalf("got %d brand citations, want 1", len(got))
	}
	if got[0].MatchedVia != "text" {
		t.Errorf("MatchedVia = %q, want text", got[0].MatchedVia)
	}
	if got[0].Context == "" {
		t.Error("expected matching sentence as context")
	}
}

func TestAttributeCitationsViaURL(t *testing.T) {
	e := testEngine()
	resp := models.LLMResponse{
		OutputText: "Details at [the official site](https://acme.com/about) for reference.",
		Citations: []models.Citation{
			{URL: "https://acme.com/about", Title: "Company", Snippet: "info"},
		},
	}

	got := e.attributeCitations(resp)
	if len(got) != 1 {
		t.Fatalf("got %d brand citations, want 1", len(got))
	}
	if got[0].MatchedVia != "url" {
		t.Errorf("MatchedVia = %q, want url", got[0].MatchedVia)
	}
	if got[0].Context != "the official site" {
		t.Errorf("Context = %q, want markdown label", got[0].Context)
	}
}

func TestAttributeCitationsViaPrimaryDomain(t *testing.T) {
	e := NewEngine("Very Different Name", "https://acme.com", nil, 0.7)
	resp := models.LLMResponse{
		OutputText: "See the docs.",
		Citations: []models.Citation{
			{URL: "https://docs.acme.com/start", Title: "Getting started", Snippet: ""},
		},
	}

	got := e.attributeCitations(resp)
	if len(got) != 1 || got[0].MatchedVia != "url" {
		t.Errorf("got %+v, want domain-matched url citation", got)
	}
}

func TestAttributeCitationsUnrelated(t *testing.T) {
	e := testEngine()
	resp := models.LLMResponse{
		OutputText: "Nothing relevant.",
		Citations: []models.Citation{
			{URL: "https://other.example.com", Title: "Industry news", Snippet: "general"},
		},
	}

	if got := e.attributeCitations(resp); len(got) != 0 {
		t.Errorf("got %+v, want no brand citations", got)
	}
}

func TestPrimaryDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.com/path", "acme.com"},
		{"https://docs.acme.co.uk", "acme.co.uk"},
		{"acme.com", "acme.com"},
		{"", ""},
		{"not a url at all %%", ""},
	}

	for _, tt := range tests {
		if got := primaryDomain(tt.in); got != tt.want {
			t.Errorf("primaryDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
