package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// Factory builds a Client for a provider configuration.
type Factory func(cfg model.ProviderConfig) (Client, error)

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(cfg model.ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, &common.ConfigurationError{Reason: "API key is empty"}
	}

	switch strings.ToLower(cfg.Provider) {
	case "", model.ProviderGemini:
		return newGeminiClient(cfg), nil
	case model.ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}
