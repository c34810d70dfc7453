package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"TranscriptDigest/internal/ports"
)

const (
	modelPath     = "/model"
	summarizePath = "/summarize"
)

// ModelInfo describes the model loaded by the inference service.
type ModelInfo struct {
	Name           string `json:"name"`
	MaxInputTokens int    `json:"maxInputTokens"`
}

// Client talks to a seq2seq inference service (BART-large-CNN class models).
// The model handle is resolved once on first use and shared by all callers.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client

	once    sync.Once
	info    ModelInfo
	loadErr error
}

var _ ports.Generator = (*Client)(nil)

// NewClient creates a reusable HTTP client; model may be empty to accept the server default.
func NewClient(endpoint, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		http:     httpClient,
	}
}

// Info loads the model on first call and returns its description.
func (c *Client) Info(ctx context.Context) (ModelInfo, error) {
	c.once.Do(func() {
		var info ModelInfo
		if err := c.do(ctx, http.MethodGet, modelPath, nil, &info); err != nil {
			c.loadErr = fmt.Errorf("load model: %w", err)
			return
		}
		if c.model != "" && info.Name != "" && info.Name != c.model {
			c.loadErr = fmt.Errorf("load model: service serves %s, want %s", info.Name, c.model)
			return
		}
		c.info = info
	})
	return c.info, c.loadErr
}

type summarizeRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters generationParams `json:"parameters"`
}

type generationParams struct {
	MinLength      int  `json:"min_length"`
	MaxLength      int  `json:"max_length"`
	NumBeams       int  `json:"num_beams"`
	EarlyStopping  bool `json:"early_stopping"`
	Truncation     bool `json:"truncation"`
	MaxInputTokens int  `json:"max_input_tokens,omitempty"`
}

type summarizeResponse []struct {
	SummaryText string `json:"summary_text"`
}

// Generate condenses the passage with beam search.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}

	limit := req.MaxInputTokens
	if info.MaxInputTokens > 0 && (limit <= 0 || info.MaxInputTokens < limit) {
		limit = info.MaxInputTokens
	}

	payload := summarizeRequest{
		Inputs: req.Passage,
		Parameters: generationParams{
			MinLength:      req.MinLength,
			MaxLength:      req.MaxLength,
			NumBeams:       req.Beams,
			EarlyStopping:  req.EarlyStopping,
			Truncation:     true,
			MaxInputTokens: limit,
		},
	}

	var resp summarizeResponse
	if err := c.do(ctx, http.MethodPost, summarizePath, payload, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	return resp[0].SummaryText, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	body := io.Reader(http.NoBody)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
