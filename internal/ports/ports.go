package ports

import (
	"context"

	"TranscriptDigest/internal/domain"
)

// TranscriptSource pulls raw transcript text from upstream providers.
type TranscriptSource interface {
	Fetch(ctx context.Context, key domain.TranscriptKey) (string, error)
}

// TranscriptRepository persists raw and summarized transcripts.
type TranscriptRepository interface {
	SaveTranscript(ctx context.Context, doc domain.Transcript) error
	SaveSummary(ctx context.Context, doc domain.Transcript) error
	HasSummary(ctx context.Context, key domain.TranscriptKey) (bool, error)
}

// StatusRecorder is implemented by repositories that track pipeline milestones.
type StatusRecorder interface {
	SetStatus(ctx context.Context, key domain.TranscriptKey, status domain.ProcessingStatus) error
}

// SentenceSplitter segments normalized text into ordered sentences.
type SentenceSplitter interface {
	Split(text string) ([]string, error)
}

// TermWeightScorer returns one non-negative importance score per sentence,
// treating the given sentences as the whole corpus.
type TermWeightScorer interface {
	Score(sentences []string) []float64
}

// GenerateRequest carries the passage and decoding settings for one condensation.
type GenerateRequest struct {
	Passage        string
	MinLength      int
	MaxLength      int
	Beams          int
	EarlyStopping  bool
	MaxInputTokens int
}

// Generator condenses a passage with a pretrained sequence-to-sequence model.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Notifier delivers a finished report to a channel (email, Telegram, bus).
type Notifier interface {
	Deliver(ctx context.Context, doc domain.Transcript) error
}

// Summarizer turns raw transcript text into a per-topic report.
type Summarizer interface {
	Summarize(ctx context.Context, raw string) (domain.Result, error)
}
