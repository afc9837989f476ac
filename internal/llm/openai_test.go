package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(model.ProviderConfig{
		Provider: model.ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		Endpoint: server.URL + "/v1",
	})
	require.NoError(t, err)
	return client
}

func TestOpenAIClient_Generate(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}

	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Consider a budget."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	resp, err := client.Generate(context.Background(), Request{
		SystemPrompt: "sys",
		UserPrompt:   "question",
		MaxTokens:    100,
		Temperature:  0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "question", gotReq.Messages[1].Content)
	assert.Equal(t, 100, gotReq.MaxTokens)

	assert.Equal(t, "Consider a budget.", resp.Text)
	assert.Equal(t, 15, resp.TokensUsed)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestOpenAIClient_APIError(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := client.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)

	var providerErr *common.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, http.StatusUnauthorized, providerErr.StatusCode)
	assert.Contains(t, providerErr.Body, "Incorrect API key")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	})

	_, err := client.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEmptyResponse))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		cfg      model.ProviderConfig
		wantErr  error
	}{
		{
			name:    "missing API key",
			cfg:     model.ProviderConfig{Provider: model.ProviderGemini},
			wantErr: common.ErrNotConfigured,
		},
		{
			name:     "default provider is gemini",
			cfg:      model.ProviderConfig{APIKey: "k"},
			wantName: model.ProviderGemini,
		},
		{
			name:     "openai",
			cfg:      model.ProviderConfig{Provider: "OpenAI", APIKey: "k"},
			wantName: model.ProviderOpenAI,
		},
		{
			name:    "unsupported provider",
			cfg:     model.ProviderConfig{Provider: "carrier-pigeon", APIKey: "k"},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, client.Name())
		})
	}
}
