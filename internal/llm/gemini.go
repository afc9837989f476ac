package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// DefaultGeminiEndpoint is the public generateContent base URL.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiClient implements the Client interface for the Gemini API.
type geminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	endpoint   string
}

func newGeminiClient(cfg model.ProviderConfig) *geminiClient {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return &geminiClient{
		apiKey:   cfg.APIKey,
		model:    modelName,
		endpoint: endpoint,
		// Requests are bounded only by the caller's context.
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *geminiClient) Name() string {
	return model.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// requestURL builds {endpoint}/{model}:generateContent?key=...
func (c *geminiClient) requestURL() string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/%s:generateContent?%s", c.endpoint, url.PathEscape(c.model), q.Encode())
}

// Generate sends the system and user prompts as two parts of a single content entry.
func (c *geminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: req.SystemPrompt},
				{Text: req.UserPrompt},
			},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, &common.ProviderError{Provider: c.Name(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &common.ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &common.ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return c.parseResponse(resp.StatusCode, respBody)
}

// parseResponse reads candidates.0 text parts and the token count.
func (c *geminiClient) parseResponse(status int, body []byte) (Response, error) {
	if !gjson.ValidBytes(body) {
		return Response{}, &common.ProviderError{
			Provider:   c.Name(),
			StatusCode: status,
			Body:       string(body),
			Err:        fmt.Errorf("malformed response body"),
		}
	}

	candidates := gjson.GetBytes(body, "candidates")
	if !candidates.IsArray() || len(candidates.Array()) == 0 {
		return Response{}, &common.ProviderError{
			Provider:   c.Name(),
			StatusCode: status,
			Body:       string(body),
			Err:        common.ErrEmptyResponse,
		}
	}

	first := candidates.Array()[0]
	var text strings.Builder
	for _, part := range first.Get("content.parts.#.text").Array() {
		text.WriteString(part.String())
	}

	return Response{
		Text:         text.String(),
		Model:        c.model,
		FinishReason: first.Get("finishReason").String(),
		TokensUsed:   int(gjson.GetBytes(body, "usageMetadata.totalTokenCount").Int()),
	}, nil
}
