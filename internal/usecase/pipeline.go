package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.TranscriptSource
	Repository ports.TranscriptRepository
	Summarizer ports.Summarizer
	Notifiers  []ports.Notifier
	Logger     *slog.Logger
	// Force reprocesses keys that already have a stored summary.
	Force bool
	Now   func() time.Time
}

// Pipeline implements the transcript workflow: fetch, store, summarize, store, deliver.
type Pipeline struct {
	source     ports.TranscriptSource
	repository ports.TranscriptRepository
	summarizer ports.Summarizer
	notifiers  []ports.Notifier
	logger     *slog.Logger
	force      bool
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Summarizer == nil {
		return nil, errors.New("summarizer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		summarizer: deps.Summarizer,
		notifiers:  deps.Notifiers,
		logger:     logger,
		force:      deps.Force,
		now:        now,
	}, nil
}

// Process fetches the transcript for key and runs it through the pipeline.
func (p *Pipeline) Process(ctx context.Context, key domain.TranscriptKey) (domain.Transcript, error) {
	if p.source == nil {
		return domain.Transcript{}, fmt.Errorf("%w: transcript source is not configured", domain.ErrCollaborator)
	}
	if err := p.checkProcessed(ctx, key); err != nil {
		return domain.Transcript{}, err
	}

	content, err := p.source.Fetch(ctx, key)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("%w: fetch %s: %w", domain.ErrCollaborator, key, err)
	}
	p.logger.Info("transcript fetched", "key", key.String(), "chars", len(content))

	return p.run(ctx, domain.Transcript{Key: key, Content: content, FetchedAt: p.now().UTC()})
}

// ProcessDocument runs caller-supplied text through the pipeline without fetching.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc domain.Transcript) (domain.Transcript, error) {
	if err := p.checkProcessed(ctx, doc.Key); err != nil {
		return doc, err
	}
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = p.now().UTC()
	}
	return p.run(ctx, doc)
}

func (p *Pipeline) checkProcessed(ctx context.Context, key domain.TranscriptKey) error {
	if p.force || p.repository == nil {
		return nil
	}
	done, err := p.repository.HasSummary(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: load processed %s: %w", domain.ErrCollaborator, key, err)
	}
	if done {
		return fmt.Errorf("%s: %w", key, domain.ErrAlreadyProcessed)
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, doc domain.Transcript) (domain.Transcript, error) {
	doc.Status = domain.StatusFetched
	if p.repository != nil {
		if err := p.repository.SaveTranscript(ctx, doc); err != nil {
			return doc, fmt.Errorf("%w: save transcript %s: %w", domain.ErrCollaborator, doc.Key, err)
		}
	}

	res, err := p.summarizer.Summarize(ctx, doc.Content)
	if err != nil {
		return doc, fmt.Errorf("summarize %s: %w", doc.Key, err)
	}
	doc.Attach(res)
	doc.Status = domain.StatusSummarized

	for _, s := range res.Skipped {
		p.logger.Warn("topic skipped", "key", doc.Key.String(), "topic", s.Topic, "error", s.Err)
	}
	p.logger.Info("transcript summarized", "key", doc.Key.String(), "topics", len(res.Summary), "skipped", len(res.Skipped))

	if p.repository != nil {
		if err := p.repository.SaveSummary(ctx, doc); err != nil {
			return doc, fmt.Errorf("%w: save summary %s: %w", domain.ErrCollaborator, doc.Key, err)
		}
	}

	if len(p.notifiers) == 0 {
		return doc, nil
	}
	if err := p.deliver(ctx, doc); err != nil {
		return doc, fmt.Errorf("%w: deliver %s: %w", domain.ErrCollaborator, doc.Key, err)
	}
	doc.Status = domain.StatusDelivered

	// the report is already out; a failed status write is only logged
	if rec, ok := p.repository.(ports.StatusRecorder); ok {
		if err := rec.SetStatus(ctx, doc.Key, doc.Status); err != nil {
			p.logger.Warn("record delivery status failed", "key", doc.Key.String(), "error", err)
		}
	}
	return doc, nil
}

// deliver hands the report to every notifier; one failing channel does not
// stop the others.
func (p *Pipeline) deliver(ctx context.Context, doc domain.Transcript) error {
	var errs []error
	for _, n := range p.notifiers {
		if err := n.Deliver(ctx, doc); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		p.logger.Info("report delivered", "key", doc.Key.String(), "channels", len(p.notifiers))
	}
	return errors.Join(errs...)
}
