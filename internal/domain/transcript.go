package domain

import (
	"fmt"
	"time"
)

// TranscriptKey identifies one earnings call transcript.
type TranscriptKey struct {
	Symbol  string
	Year    int
	Quarter int
}

// String renders the key the way files and cache entries are named, e.g. JPM-2024-Q1.
func (k TranscriptKey) String() string {
	return fmt.Sprintf("%s-%d-Q%d", k.Symbol, k.Year, k.Quarter)
}

// Title is the human readable label used in reports and messages.
func (k TranscriptKey) Title() string {
	return fmt.Sprintf("%s - %d Q%d Earnings Call Transcript", k.Symbol, k.Year, k.Quarter)
}

// Transcript is the document flowing through the pipeline. The caller owns it;
// the summarizer only attaches results.
type Transcript struct {
	Key       TranscriptKey
	Content   string
	Summary   Summary
	Report    string
	Skipped   []SkippedTopic
	Status    ProcessingStatus
	FetchedAt time.Time
}

// Attach copies a summarization result onto the transcript.
func (t *Transcript) Attach(res Result) {
	t.Summary = res.Summary
	t.Report = res.Report
	t.Skipped = res.Skipped
}

// Topic is a named keyword set used to bucket sentences.
type Topic struct {
	Name     string
	Keywords []string
}

// CategorizedSentences maps topic name to the sentences matching it, in document order.
// A sentence can appear under several topics.
type CategorizedSentences map[string][]string

// ScoredSentence pairs a sentence with its importance inside one topic pool.
type ScoredSentence struct {
	Text  string
	Score float64
}

// Summary maps topic name to its condensed paragraph. Topics without a
// condensation are absent.
type Summary map[string]string

// SkippedTopic records why a topic produced no condensation.
type SkippedTopic struct {
	Topic string
	Err   error
}

// Result is what a single summarization run hands back.
type Result struct {
	Summary Summary
	Report  string
	Skipped []SkippedTopic
}

// ProcessingStatus enumerates pipeline milestones persisted with a transcript.
type ProcessingStatus string

const (
	StatusFetched    ProcessingStatus = "fetched"
	StatusSummarized ProcessingStatus = "summarized"
	StatusDelivered  ProcessingStatus = "delivered"
)
