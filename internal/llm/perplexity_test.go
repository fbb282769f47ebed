package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(strings.Builder), &slog.HandlerOptions{Level: slog.LevelError}))
}

func perplexityServer(t *testing.T, body string, status int) *PerplexityClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := NewPerplexityClient("test-key", "", discardLogger())
	if err != nil {
		t.Fatalf("NewPerplexityClient: %v", err)
	}
	c.endpoint = srv.URL
	return c
}

func TestExecuteWithSearchResults(t *testing.T) {
	c := perplexityServer(t, `{
		"choices": [{"message": {"content": "Acme is a popular choice."}}],
		"citations": ["https://ignored.example.com"],
		"search_results": [
			{"title": "Acme review", "url": "https://example.com/review", "snippet": "details"},
			{"title": "Dup", "url": "https://example.com/review", "snippet": "again"}
		]
	}`, http.StatusOK)

	got, err := c.Execute(context.Background(), "who offers widgets?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.OutputText != "Acme is a popular choice." {
		t.Errorf("OutputText = %q", got.OutputText)
	}
	if len(got.Citations) != 1 {
		t.Fatalf("Citations = %+v, want 1 deduplicated entry", got.Citations)
	}
	if got.Citations[0].Title != "Acme review" {
		t.Errorf("Title = %q", got.Citations[0].Title)
	}
}

func TestExecuteCitationListFallback(t *testing.T) {
	c := perplexityServer(t, `{
		"choices": [{"message": {"content": "Answer text."}}],
		"citations": ["https://example.com/a", "https://example.com/b"]
	}`, http.StatusOK)

	got, err := c.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got.Citations) != 2 {
		t.Errorf("Citations = %+v, want 2 from url list", got.Citations)
	}
	if got.Citations[0].Title != "" {
		t.Errorf("url-list citations carry no title, got %q", got.Citations[0].Title)
	}
}

func TestExecuteMinedURLFallback(t *testing.T) {
	c := perplexityServer(t, `{
		"choices": [{"message": {"content": "See https://example.com/source for details."}}]
	}`, http.StatusOK)

	got, err := c.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got.Citations) != 1 || got.Citations[0].URL != "https://example.com/source" {
		t.Errorf("Citations = %+v, want url mined from text", got.Citations)
	}
}

func TestExecuteEmptyOutput(t *testing.T) {
	c := perplexityServer(t, `{"choices": [{"message": {"content": "  "}}]}`, http.StatusOK)

	_, err := c.Execute(context.Background(), "q")
	if !errors.Is(err, ErrNoAnswerText) {
		t.Errorf("err = %v, want ErrNoAnswerText", err)
	}
}

func TestExecuteNonOKStatus(t *testing.T) {
	c := perplexityServer(t, `{"error": "rate limited"}`, http.StatusTooManyRequests)

	_, err := c.Execute(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status error", err)
	}
}

func TestNewPerplexityClientRequiresKey(t *testing.T) {
	if _, err := NewPerplexityClient("", "", discardLogger()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}
