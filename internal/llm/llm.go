// Package llm holds the external model collaborators: a chat-completion
// client used for category and question generation, and a web-search client
// that answers prompts with cited sources.
package llm

import (
	"context"
	"errors"
	"net"

	"github.com/brandscope/brandscope/internal/models"
)

var (
	// ErrNoAnswerText is returned when a provider responds successfully
	// but produces no usable output text. Callers must treat this as a
	// failure; a silently empty answer would corrupt downstream metrics.
	ErrNoAnswerText = errors.New("no answer text was produced")

	// ErrMissingAPIKey is returned by constructors when the provider
	// credential is absent.
	ErrMissingAPIKey = errors.New("provider api key is not configured")

	// ErrTimeout marks a call that exceeded its deadline, as opposed to
	// other transport failures.
	ErrTimeout = errors.New("provider call timed out")
)

// CompleteOptions tune a single chat completion call.
type CompleteOptions struct {
	JSONMode    bool
	MaxTokens   int
	Temperature float64
}

// ChatClient is a plain chat-completion collaborator.
type ChatClient interface {
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
}

// SearchClient answers a question using a web-search-backed model and
// returns the answer text with its citations.
type SearchClient interface {
	Execute(ctx context.Context, question string) (models.LLMResponse, error)
}

// wrapTimeout converts deadline failures into ErrTimeout so callers can
// distinguish them from other transport errors.
func wrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
