package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/ports"
)

func TestUserPromptCarriesBoundsAndPassage(t *testing.T) {
	t.Parallel()

	p := userPrompt(ports.GenerateRequest{Passage: "Revenue grew.", MinLength: 30, MaxLength: 150})
	assert.Contains(t, p, "30 to 150")
	assert.True(t, strings.HasSuffix(p, "Revenue grew."))
}

func TestSafePrompt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultSystemPrompt, safePrompt("  "))
	assert.Equal(t, "custom", safePrompt(" custom "))
}

func TestNewClientsValidateConfig(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(config.ChatGPTConfig{Model: "gpt-4o-mini"})
	require.Error(t, err)
	_, err = NewOpenAIClient(config.ChatGPTConfig{APIKey: "k"})
	require.Error(t, err)
	_, err = NewGeminiClient(config.GeminiConfig{})
	require.Error(t, err)

	g, err := NewGeminiClient(config.GeminiConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", g.model)
}

func TestOpenAIGenerate(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Revenue rose. Costs fell."}}]
		}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(config.ChatGPTConfig{
		Endpoint: srv.URL + "/v1/",
		Model:    "gpt-4o-mini",
		APIKey:   "test",
	}, option.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), ports.GenerateRequest{Passage: "p", MinLength: 30, MaxLength: 150})
	require.NoError(t, err)
	assert.Equal(t, "Revenue rose. Costs fell.", out)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 150, body["max_completion_tokens"])
}
