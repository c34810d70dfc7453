package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"TranscriptDigest/internal/domain"
)

// Processor runs one transcript key end to end.
type Processor interface {
	Process(ctx context.Context, key domain.TranscriptKey) (domain.Transcript, error)
}

// KeyFailure records why one key did not finish.
type KeyFailure struct {
	Key domain.TranscriptKey
	Err error
}

// BatchReport is the outcome of a batch run, one entry per key in run order.
type BatchReport struct {
	Processed []domain.TranscriptKey
	Skipped   []domain.TranscriptKey
	Failed    []KeyFailure
}

// Err joins the per-key failures, or returns nil if there were none.
func (r BatchReport) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Key, f.Err))
	}
	return errors.Join(errs...)
}

// Batch runs the pipeline over every symbol and quarter of a year, one
// document at a time.
type Batch struct {
	processor Processor
	logger    *slog.Logger
}

// NewBatch creates a sequential batch runner.
func NewBatch(processor Processor, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Batch{processor: processor, logger: logger}
}

// Keys expands symbols x quarters for year, symbols outermost.
func Keys(year int, symbols []string, quarters []int) []domain.TranscriptKey {
	keys := make([]domain.TranscriptKey, 0, len(symbols)*len(quarters))
	for _, sym := range symbols {
		for _, q := range quarters {
			keys = append(keys, domain.TranscriptKey{Symbol: sym, Year: year, Quarter: q})
		}
	}
	return keys
}

// Run processes every key. A failing key is recorded and the run continues;
// the returned error is non-nil only when ctx ends the run early.
func (b *Batch) Run(ctx context.Context, year int, symbols []string, quarters []int) (BatchReport, error) {
	var report BatchReport
	for _, key := range Keys(year, symbols, quarters) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := b.processor.Process(ctx, key)
		switch {
		case err == nil:
			report.Processed = append(report.Processed, key)
		case errors.Is(err, domain.ErrAlreadyProcessed):
			b.logger.Info("already processed, skipping", "key", key.String())
			report.Skipped = append(report.Skipped, key)
		default:
			b.logger.Error("transcript failed", "key", key.String(), "error", err)
			report.Failed = append(report.Failed, KeyFailure{Key: key, Err: err})
		}
	}

	b.logger.Info("batch finished",
		"processed", len(report.Processed),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))
	return report, nil
}
