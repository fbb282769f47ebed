package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brandscope/brandscope/internal/models"
)

const maxContentChars = 8000

// Generator drives category and question generation through a ChatClient.
// Callers are expected to fall back to the deterministic generators when a
// call fails; Generator itself never silently invents output.
type Generator struct {
	chat   ChatClient
	logger *slog.Logger
}

func NewGenerator(chat ChatClient, logger *slog.Logger) *Generator {
	return &Generator{chat: chat, logger: logger}
}

// ProposeCategories asks the model for 15-20 topical categories based on
// site content. Content beyond 8000 characters is ignored.
func (g *Generator) ProposeCategories(ctx context.Context, content, websiteURL string) ([]models.Category, error) {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	prompt := fmt.Sprintf(`Analyze the following website content and propose 15-20 categories of questions that potential customers would ask a search engine about this kind of product or service.

Website: %s

Requirements:
- Each category needs a short name and a one-sentence description
- Categories must reflect what the site actually offers
- Include commercial categories (pricing, comparison) when relevant
- Return ONLY a JSON object of the form {"categories": [{"name": "...", "description": "...", "confidence": 0.0}]}
- confidence is your 0 to 1 estimate of how relevant the category is

Content:
%s`, websiteURL, content)

	response, err := g.chat.Complete(ctx, prompt, CompleteOptions{
		JSONMode:    true,
		MaxTokens:   2000,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("category proposal: %w", err)
	}

	var parsed struct {
		Categories []struct {
			Name        string  `json:"name"`
			Description string  `json:"description"`
			Confidence  float64 `json:"confidence"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(extractJSONObject(response), &parsed); err != nil {
		return nil, fmt.Errorf("parse category proposal: %w", err)
	}
	if len(parsed.Categories) == 0 {
		return nil, fmt.Errorf("category proposal: %w", ErrNoAnswerText)
	}

	out := make([]models.Category, 0, len(parsed.Categories))
	for _, c := range parsed.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		conf := c.Confidence
		if conf <= 0 || conf > 1 {
			conf = 0.5
		}
		out = append(out, models.Category{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.TrimSpace(c.Description),
			Confidence:  conf,
			SourcePages: []string{},
		})
	}
	g.logger.Info("llm proposed categories", "count", len(out))
	return out, nil
}

// GenerateQuestions asks the model for exactly n search-style questions for
// one category, in the run's language and locale. Brand-neutral phrasing is
// requested so responses reveal organic visibility rather than parroting
// the brand back.
func (g *Generator) GenerateQuestions(ctx context.Context, product, categoryName, categoryDesc string, input models.RunInput, n int) ([]string, error) {
	prompt := fmt.Sprintf(`Generate exactly %d questions that a potential customer in %s would type into a search engine about this topic, written in the language with code %q.

Topic category: %s (%s)
The product behind this research is %s, but the questions must NOT mention it by name.

Requirements:
- Direct, search-style questions; prefer "who is" / "who offers" / "which provider" phrasing over "how"
- Locally flavored for %s where natural
- Brand-neutral: never name any specific company or product
- Return ONLY a JSON object of the form {"questions": ["...", "..."]}`,
		n, input.Country, input.Language, categoryName, categoryDesc, product, input.Country)

	response, err := g.chat.Complete(ctx, prompt, CompleteOptions{
		JSONMode:    true,
		MaxTokens:   1200,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal(extractJSONObject(response), &parsed); err != nil {
		return nil, fmt.Errorf("parse question generation: %w", err)
	}

	questions := make([]string, 0, n)
	for _, q := range parsed.Questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == n {
			break
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question generation: %w", ErrNoAnswerText)
	}
	return questions, nil
}

// extractJSONObject pulls the outermost JSON object out of a model reply
// that may be wrapped in prose or code fences.
func extractJSONObject(response string) []byte {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return []byte(response[start : end+1])
	}
	return []byte(response)
}
