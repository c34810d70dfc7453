package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/ports"
)

// GeminiClient implements ports.Generator with the Gemini API.
// The SDK client is created on first use and reused.
type GeminiClient struct {
	apiKey       string
	model        string
	systemPrompt string

	once   sync.Once
	client *genai.Client
	err    error
}

var _ ports.Generator = (*GeminiClient)(nil)

// NewGeminiClient validates configuration; no network call happens here.
func NewGeminiClient(cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key missing")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{apiKey: cfg.APIKey, model: model, systemPrompt: safePrompt(cfg.SystemPrompt)}, nil
}

// Generate sends the condensation prompt and concatenates the text parts of the first candidate.
func (g *GeminiClient) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	if g.err != nil {
		return "", fmt.Errorf("create gemini client: %w", g.err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
	}
	if req.MaxLength > 0 {
		cfg.MaxOutputTokens = int32(req.MaxLength)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt(req)), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var b strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		return b.String(), nil
	}

	return "", errors.New("empty response from gemini")
}
