package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TranscriptDigest/internal/ports"
)

func newModelServer(t *testing.T, modelCalls *atomic.Int32, got chan<- summarizeRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /model", func(w http.ResponseWriter, r *http.Request) {
		modelCalls.Add(1)
		_ = json.NewEncoder(w).Encode(ModelInfo{Name: "facebook/bart-large-cnn", MaxInputTokens: 1024})
	})
	mux.HandleFunc("POST /summarize", func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got != nil {
			got <- req
		}
		_, _ = w.Write([]byte(`[{"summary_text":"Revenue rose. Risk fell."}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateSendsDecodingSettings(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	got := make(chan summarizeRequest, 1)
	srv := newModelServer(t, &calls, got)

	c := NewClient(srv.URL, "secret", "facebook/bart-large-cnn", srv.Client())
	out, err := c.Generate(context.Background(), ports.GenerateRequest{
		Passage: "Revenue rose sharply.", MinLength: 30, MaxLength: 150, Beams: 4, EarlyStopping: true, MaxInputTokens: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "Revenue rose. Risk fell.", out)

	req := <-got
	assert.Equal(t, "Revenue rose sharply.", req.Inputs)
	assert.Equal(t, generationParams{
		MinLength: 30, MaxLength: 150, NumBeams: 4, EarlyStopping: true, Truncation: true, MaxInputTokens: 1024,
	}, req.Parameters)
}

func TestModelLoadsOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newModelServer(t, &calls, nil)
	c := NewClient(srv.URL, "", "", srv.Client())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Generate(context.Background(), ports.GenerateRequest{Passage: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestModelMismatchFailsEveryCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := newModelServer(t, &calls, nil)
	c := NewClient(srv.URL, "", "t5-small", srv.Client())

	_, err := c.Generate(context.Background(), ports.GenerateRequest{Passage: "x"})
	require.Error(t, err)
	_, err = c.Generate(context.Background(), ports.GenerateRequest{Passage: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/model" {
			_, _ = w.Write([]byte(`{"name":"m"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", "", srv.Client()).Generate(context.Background(), ports.GenerateRequest{Passage: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
