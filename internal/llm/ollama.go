package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	defaultOllamaURL     = "http://localhost:11434"
	defaultOllamaModel   = "llama3.1:8b"
	defaultOllamaTimeout = 120 * time.Second
)

// OllamaChat implements ChatClient against a local Ollama server. It is the
// self-hosted alternative to the hosted chat provider.
type OllamaChat struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewOllamaChat(ollamaURL, model string, logger *slog.Logger) (*OllamaChat, error) {
	if ollamaURL == "" {
		ollamaURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}

	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}

	return &OllamaChat{
		client:  api.NewClient(baseURL, http.DefaultClient),
		model:   model,
		timeout: defaultOllamaTimeout,
		logger:  logger,
	}, nil
}

func (c *OllamaChat) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}
	if opts.JSONMode {
		req.Format = json.RawMessage(`"json"`)
	}
	if opts.Temperature > 0 {
		req.Options = map[string]any{"temperature": opts.Temperature}
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", wrapTimeout(fmt.Errorf("ollama generation: %w", err))
	}

	result := strings.TrimSpace(response.String())
	if result == "" {
		return "", fmt.Errorf("ollama generation: %w", ErrNoAnswerText)
	}

	c.logger.Debug("ollama completion received", "model", c.model, "chars", len(result))
	return result, nil
}
