package llm

import (
	"context"
)

// Client defines the interface for LLM providers.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Name returns the provider identifier, e.g. "gemini".
	Name() string
}

// Request is a single-shot generation request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Response contains the provider's answer.
type Response struct {
	Text         string
	Model        string
	FinishReason string
	TokensUsed   int
}
