package llm

import (
	"context"
	"errors"

	"meal-planner/internal/shared"
)

// ErrRateLimited is returned when the upstream API answers HTTP 429.
// Callers use it to decide whether to back off before the next model.
var ErrRateLimited = errors.New("llm: rate limited")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// ModelTextGenerator generates text with an explicit model identifier,
// allowing a caller to walk a fallback list of models on one endpoint.
type ModelTextGenerator interface {
	GenerateWithModel(ctx context.Context, model, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
