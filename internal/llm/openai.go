package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// openAIClient implements the Client interface for OpenAI-compatible APIs.
type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg model.ProviderConfig) *openAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT3Dot5Turbo
	}

	return &openAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  modelName,
	}
}

func (c *openAIClient) Name() string {
	return model.ProviderOpenAI
}

// Generate sends the system prompt as a system message and the user prompt as a user message.
func (c *openAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return Response{}, c.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return Response{}, &common.ProviderError{
			Provider:   c.Name(),
			StatusCode: 200,
			Err:        common.ErrEmptyResponse,
		}
	}

	return Response{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}

func (c *openAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &common.ProviderError{
			Provider:   c.Name(),
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &common.ProviderError{
			Provider:   c.Name(),
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
			Err:        err,
		}
	}

	return &common.ProviderError{Provider: c.Name(), Err: err}
}
