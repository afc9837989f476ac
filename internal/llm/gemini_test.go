package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

func newTestGeminiClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(model.ProviderConfig{
		Provider: model.ProviderGemini,
		APIKey:   "test-key",
		Model:    "gemini-1.5-flash",
		Endpoint: server.URL + "/v1beta/models",
	})
	require.NoError(t, err)
	return client
}

func TestGeminiClient_Generate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte

	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"parts": [{"text": "Your spending "}, {"text": "looks fine."}]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"totalTokenCount": 321}
		}`))
	})

	resp, err := client.Generate(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.7,
		MaxTokens:    2048,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	assert.Equal(t, "system", gjson.GetBytes(gotBody, "contents.0.parts.0.text").String())
	assert.Equal(t, "user", gjson.GetBytes(gotBody, "contents.0.parts.1.text").String())
	assert.InDelta(t, 0.7, gjson.GetBytes(gotBody, "generationConfig.temperature").Float(), 1e-9)
	assert.Equal(t, int64(2048), gjson.GetBytes(gotBody, "generationConfig.maxOutputTokens").Int())

	assert.Equal(t, "Your spending looks fine.", resp.Text)
	assert.Equal(t, 321, resp.TokensUsed)
	assert.Equal(t, "STOP", resp.FinishReason)
	assert.Equal(t, "gemini-1.5-flash", resp.Model)
}

func TestGeminiClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErrIs  error
		status     int
		wantStatus int
	}{
		{
			name:       "non-success status",
			status:     http.StatusForbidden,
			body:       `{"error":{"message":"API key not valid"}}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty candidates",
			status:     http.StatusOK,
			body:       `{"candidates": []}`,
			wantStatus: http.StatusOK,
			wantErrIs:  common.ErrEmptyResponse,
		},
		{
			name:       "missing candidates",
			status:     http.StatusOK,
			body:       `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			wantStatus: http.StatusOK,
			wantErrIs:  common.ErrEmptyResponse,
		},
		{
			name:       "malformed body",
			status:     http.StatusOK,
			body:       `not json`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestGeminiClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Generate(context.Background(), Request{UserPrompt: "hi"})
			require.Error(t, err)
			assert.True(t, common.IsProviderError(err))

			var providerErr *common.ProviderError
			require.True(t, errors.As(err, &providerErr))
			assert.Equal(t, tt.wantStatus, providerErr.StatusCode)
			assert.Equal(t, tt.body, providerErr.Body)
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))
			}
		})
	}
}

func TestGeminiClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client, err := NewClient(model.ProviderConfig{APIKey: "k", Endpoint: endpoint})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), Request{UserPrompt: "hi"})
	require.Error(t, err)

	var providerErr *common.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Zero(t, providerErr.StatusCode)
}

func TestGeminiClient_Defaults(t *testing.T) {
	client := newGeminiClient(model.ProviderConfig{APIKey: "abc"})
	assert.Equal(t, DefaultGeminiEndpoint, client.endpoint)
	assert.Equal(t, "gemini-1.5-flash", client.model)
	assert.Equal(t, DefaultGeminiEndpoint+"/gemini-1.5-flash:generateContent?key=abc", client.requestURL())
}
