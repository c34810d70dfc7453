package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// fakeGenerator echoes a prefix of the passage and records requests.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []ports.GenerateRequest
	failOn   string
	empty    bool
}

func (f *fakeGenerator) Generate(_ context.Context, req ports.GenerateRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(req.Passage, f.failOn) {
		return "", errors.New("model unavailable")
	}
	if f.empty {
		return "   ", nil
	}
	return "condensed: " + req.Passage, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type failingSplitter struct{}

func (failingSplitter) Split(string) ([]string, error) {
	return nil, errors.New("splitter offline")
}

// constScorer gives every sentence the same score to exercise tie breaks.
type constScorer struct{}

func (constScorer) Score(s []string) []float64 {
	out := make([]float64, len(s))
	for i := range out {
		out[i] = 1
	}
	return out
}

func testTopics() []domain.Topic {
	return []domain.Topic{
		{Name: "SUMMARY", Keywords: []string{"revenue", "profit", "earnings", "guidance", "outlook"}},
		{Name: "STRATEGIC_UPDATES", Keywords: []string{"loan growth", "strategic", "initiative"}},
		{Name: "GUIDANCE_OUTLOOK", Keywords: []string{"guidance", "outlook", "forecast", "future"}},
		{Name: "RISK_ANALYSIS", Keywords: []string{"risk", "challenge", "mitigation", "uncertainty"}},
		{Name: "Q_AND_A", Keywords: []string{"question", "answer", "ask", "respond", "clarify", "explain"}},
	}
}
