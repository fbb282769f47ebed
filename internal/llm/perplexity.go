package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mvdan.cc/xurls/v2"

	"github.com/brandscope/brandscope/internal/models"
)

const (
	perplexityEndpoint       = "https://api.perplexity.ai/chat/completions"
	defaultPerplexityModel   = "sonar"
	defaultPerplexityTimeout = 120 * time.Second
)

var urlPattern = xurls.Strict()

// PerplexityClient implements SearchClient on the Perplexity chat API,
// which answers with web-search-grounded text plus source citations.
type PerplexityClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewPerplexityClient(apiKey, model string, logger *slog.Logger) (*PerplexityClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultPerplexityModel
	}

	return &PerplexityClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: perplexityEndpoint,
		httpClient: &http.Client{
			Timeout: defaultPerplexityTimeout,
		},
		logger: logger,
	}, nil
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// perplexityResponse is the typed shape of the provider answer. The
// provider has shipped citations under different keys over time, so both
// search_results and the bare citations URL list are decoded.
type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string `json:"citations"`
	SearchResults []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"search_results"`
}

// Execute sends the question and returns answer text plus citations. The
// citation source is resolved through a fallback chain: structured search
// results, then the bare citation URL list, then URLs mined from the answer
// text itself. Each fallback step is logged so precision regressions are
// visible.
func (c *PerplexityClient) Execute(ctx context.Context, question string) (models.LLMResponse, error) {
	body, err := json.Marshal(perplexityRequest{
		Model: c.model,
		Messages: []perplexityMessage{
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return models.LLMResponse{}, fmt.Errorf("marshal perplexity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return models.LLMResponse{}, fmt.Errorf("build perplexity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.LLMResponse{}, wrapTimeout(fmt.Errorf("perplexity call: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return models.LLMResponse{}, fmt.Errorf("read perplexity response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.LLMResponse{}, fmt.Errorf("perplexity call: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var decoded perplexityResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return models.LLMResponse{}, fmt.Errorf("decode perplexity response: %w", err)
	}

	text := ""
	if len(decoded.Choices) > 0 {
		text = strings.TrimSpace(decoded.Choices[0].Message.Content)
	}
	if text == "" {
		return models.LLMResponse{}, fmt.Errorf("perplexity call: %w", ErrNoAnswerText)
	}

	return models.LLMResponse{
		OutputText: text,
		Citations:  c.extractCitations(decoded, text),
		Model:      c.model,
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (c *PerplexityClient) extractCitations(decoded perplexityResponse, text string) []models.Citation {
	seen := make(map[string]bool)
	citations := []models.Citation{}

	add := func(cit models.Citation) {
		if cit.URL == "" || seen[cit.URL] {
			return
		}
		seen[cit.URL] = true
		citations = append(citations, cit)
	}

	if len(decoded.SearchResults) > 0 {
		for _, sr := range decoded.SearchResults {
			add(models.Citation{URL: sr.URL, Title: sr.Title, Snippet: sr.Snippet})
		}
		return citations
	}

	if len(decoded.Citations) > 0 {
		c.logger.Debug("no search_results in provider response, using citation url list")
		for _, u := range decoded.Citations {
			add(models.Citation{URL: u})
		}
		return citations
	}

	mined := urlPattern.FindAllString(text, -1)
	if len(mined) > 0 {
		c.logger.Debug("no provider citations, mining urls from answer text", "found", len(mined))
		for _, u := range mined {
			add(models.Citation{URL: strings.TrimRight(u, ".,)")})
		}
	}
	return citations
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
