// Package model defines the core data types shared by the advisor services.
package model

// Provider identifiers understood by the llm package.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ProviderConfig holds the settings used for every language-model call.
type ProviderConfig struct {
	Provider    string  `json:"provider"`
	APIKey      string  `json:"apiKey"`
	Model       string  `json:"model"`
	Endpoint    string  `json:"endpoint,omitempty"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

// Redacted returns a copy safe to display, with all but the last four key characters masked.
func (c ProviderConfig) Redacted() ProviderConfig {
	out := c
	if n := len(c.APIKey); n > 0 {
		if n <= 4 {
			out.APIKey = "****"
		} else {
			out.APIKey = "****" + c.APIKey[n-4:]
		}
	}
	return out
}

// ConfigUpdate is a partial ProviderConfig. Nil fields are left untouched when merged.
type ConfigUpdate struct {
	Provider    *string  `json:"provider,omitempty"`
	APIKey      *string  `json:"apiKey,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Endpoint    *string  `json:"endpoint,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Apply merges the non-nil fields of u into cfg.
func (u ConfigUpdate) Apply(cfg ProviderConfig) ProviderConfig {
	if u.Provider != nil {
		cfg.Provider = *u.Provider
	}
	if u.APIKey != nil {
		cfg.APIKey = *u.APIKey
	}
	if u.Model != nil {
		cfg.Model = *u.Model
	}
	if u.Endpoint != nil {
		cfg.Endpoint = *u.Endpoint
	}
	if u.MaxTokens != nil {
		cfg.MaxTokens = *u.MaxTokens
	}
	if u.Temperature != nil {
		cfg.Temperature = *u.Temperature
	}
	return cfg
}
