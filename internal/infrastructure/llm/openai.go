package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/ports"
)

// OpenAIClient implements ports.Generator with chat completions.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

var _ ports.Generator = (*OpenAIClient)(nil)

// NewOpenAIClient builds the SDK client once; it is safe for concurrent use.
func NewOpenAIClient(cfg config.ChatGPTConfig, extra ...option.RequestOption) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	return &OpenAIClient{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
	}, nil
}

// Generate asks the chat model for a condensed paragraph.
func (c *OpenAIClient) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(userPrompt(req)),
		},
	}
	if req.MaxLength > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxLength))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
