package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel   = openai.ChatModelGPT4o
	defaultChatTimeout   = 30 * time.Second
	defaultSystemMessage = "You are a brand visibility analyst. Answer precisely and return valid JSON when asked for JSON."
)

// OpenAIChat implements ChatClient on the OpenAI chat completions API.
type OpenAIChat struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIChat builds a chat client. An empty model selects GPT-4o.
func NewOpenAIChat(apiKey, model string, logger *slog.Logger) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	m := defaultOpenAIModel
	if model != "" {
		m = openai.ChatModel(model)
	}

	return &OpenAIChat{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   m,
		timeout: defaultChatTimeout,
		logger:  logger,
	}, nil
}

func (c *OpenAIChat) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(defaultSystemMessage),
			openai.UserMessage(prompt),
		},
		Model: c.model,
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapTimeout(fmt.Errorf("openai completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: %w", ErrNoAnswerText)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai completion: %w", ErrNoAnswerText)
	}

	c.logger.Debug("openai completion received", "model", c.model, "chars", len(content))
	return content, nil
}
