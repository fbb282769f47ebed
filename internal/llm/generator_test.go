package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/brandscope/brandscope/internal/models"
)

type stubChat struct {
	response string
	err      error
	lastOpts CompleteOptions
}

func (s *stubChat) Complete(_ context.Context, _ string, opts CompleteOptions) (string, error) {
	s.lastOpts = opts
	return s.response, s.err
}

func TestProposeCategories(t *testing.T) {
	chat := &stubChat{response: `Here you go:
{"categories": [
  {"name": "Pricing", "description": "Cost questions", "confidence": 0.9},
  {"name": "", "description": "dropped", "confidence": 0.5},
  {"name": "Support", "description": "Help questions", "confidence": 7}
]}`}
	g := NewGenerator(chat, discardLogger())

	got, err := g.ProposeCategories(context.Background(), "site content", "https://acme.com")
	if err != nil {
		t.Fatalf("ProposeCategories: %v", err)
	}
	if !chat.lastOpts.JSONMode {
		t.Error("expected JSONMode request")
	}
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2 (empty name dropped)", len(got))
	}
	if got[0].Name != "Pricing" || got[0].Confidence != 0.9 {
		t.Errorf("first category = %+v", got[0])
	}
	// Out-of-range confidence is normalized.
	if got[1].Confidence != 0.5 {
		t.Errorf("Confidence = %v, want normalized 0.5", got[1].Confidence)
	}
	if got[0].ID == "" {
		t.Error("missing category id")
	}
}

func TestProposeCategoriesMalformedJSON(t *testing.T) {
	g := NewGenerator(&stubChat{response: "sorry, no json today"}, discardLogger())
	if _, err := g.ProposeCategories(context.Background(), "content", "https://acme.com"); err == nil {
		t.Error("expected parse error")
	}
}

func TestProposeCategoriesChatError(t *testing.T) {
	g := NewGenerator(&stubChat{err: errors.New("boom")}, discardLogger())
	if _, err := g.ProposeCategories(context.Background(), "content", "https://acme.com"); err == nil {
		t.Error("expected propagated chat error")
	}
}

func TestGenerateQuestions(t *testing.T) {
	chat := &stubChat{response: `{"questions": ["Who offers widgets in Germany?", " ", "Which provider is cheapest?", "Extra question?"]}`}
	g := NewGenerator(chat, discardLogger())

	input := models.RunInput{Country: "Germany", Language: "en"}
	got, err := g.GenerateQuestions(context.Background(), "Acme", "Pricing", "Cost questions", input, 2)
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want capped at 2", len(got))
	}
	if got[0] != "Who offers widgets in Germany?" {
		t.Errorf("first question = %q", got[0])
	}
}

func TestGenerateQuestionsEmpty(t *testing.T) {
	g := NewGenerator(&stubChat{response: `{"questions": []}`}, discardLogger())
	input := models.RunInput{Country: "Germany", Language: "en"}

	_, err := g.GenerateQuestions(context.Background(), "Acme", "Pricing", "", input, 3)
	if !errors.Is(err, ErrNoAnswerText) {
		t.Errorf("err = %v, want ErrNoAnswerText", err)
	}
}
