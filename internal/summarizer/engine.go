package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// Deps wires the replaceable capabilities into the engine.
type Deps struct {
	Splitter  ports.SentenceSplitter
	Scorer    ports.TermWeightScorer
	Generator ports.Generator
	Logger    *slog.Logger
}

// Options tune selection, condensation and the per-topic worker pool.
type Options struct {
	SentencesPerTopic int
	Condense          CondenseOptions
	// Workers bounds concurrent topic tasks; zero means runtime.NumCPU().
	Workers int
}

// Engine turns one transcript into a per-topic condensed report.
// It holds no per-document state and can be shared.
type Engine struct {
	topics      []domain.Topic
	categorizer *Categorizer
	scorer      ports.TermWeightScorer
	condenser   *Condenser
	perTopic    int
	workers     int
	logger      *slog.Logger
}

var _ ports.Summarizer = (*Engine)(nil)

// New validates deps and copies the topic table.
func New(topics []domain.Topic, deps Deps, opts Options) (*Engine, error) {
	if deps.Splitter == nil {
		return nil, errors.New("sentence splitter is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("term weight scorer is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("generator is required")
	}

	seen := make(map[string]struct{}, len(topics))
	owned := make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		if t.Name == "" {
			return nil, errors.New("topic name is empty")
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("duplicate topic %s", t.Name)
		}
		seen[t.Name] = struct{}{}
		owned = append(owned, domain.Topic{
			Name:     t.Name,
			Keywords: append([]string(nil), t.Keywords...),
		})
	}

	if opts.SentencesPerTopic <= 0 {
		opts.SentencesPerTopic = DefaultSentencesPerTopic
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		topics:      owned,
		categorizer: NewCategorizer(deps.Splitter, owned),
		scorer:      deps.Scorer,
		condenser:   NewCondenser(deps.Generator, opts.Condense),
		perTopic:    opts.SentencesPerTopic,
		workers:     opts.Workers,
		logger:      logger,
	}, nil
}

// Topics returns the configured topic names in canonical order.
func (e *Engine) Topics() []string {
	names := make([]string, len(e.topics))
	for i, t := range e.topics {
		names[i] = t.Name
	}
	return names
}

type topicOutcome struct {
	paragraph string
	err       error
}

// Summarize normalizes and categorizes raw text once, then ranks, selects and
// condenses every topic independently. Topic failures land in Result.Skipped;
// only a splitter failure fails the whole call.
func (e *Engine) Summarize(ctx context.Context, raw string) (domain.Result, error) {
	normalized := Normalize(raw)

	buckets, err := e.categorizer.Categorize(normalized)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrCollaborator, err)
	}

	outcomes := make([]topicOutcome, len(e.topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, topic := range e.topics {
		sentences := buckets[topic.Name]
		g.Go(func() error {
			outcomes[i] = e.summarizeTopic(gctx, topic.Name, sentences)
			return nil
		})
	}
	_ = g.Wait()

	res := domain.Result{Summary: domain.Summary{}}
	for i, topic := range e.topics {
		out := outcomes[i]
		if out.err != nil {
			res.Skipped = append(res.Skipped, domain.SkippedTopic{Topic: topic.Name, Err: out.err})
			continue
		}
		res.Summary[topic.Name] = out.paragraph
	}
	res.Report = Format(e.Topics(), res.Summary)

	e.logger.Debug("summarized",
		"topics", len(res.Summary),
		"skipped", len(res.Skipped),
		"report_bytes", len(res.Report))
	return res, nil
}

func (e *Engine) summarizeTopic(ctx context.Context, topic string, sentences []string) topicOutcome {
	if len(sentences) == 0 {
		e.logger.Debug("topic has no sentences", "topic", topic)
		return topicOutcome{err: domain.ErrInputEmpty}
	}

	ranked := Rank(e.scorer, sentences)
	selected := SelectTop(ranked, e.perTopic)

	paragraph, err := e.condenser.Condense(ctx, selected)
	if err != nil {
		if !errors.Is(err, domain.ErrInputEmpty) {
			e.logger.Warn("condense topic failed", "topic", topic, "error", err)
		}
		return topicOutcome{err: err}
	}

	e.logger.Debug("topic condensed", "topic", topic, "sentences", len(sentences), "selected", len(selected))
	return topicOutcome{paragraph: paragraph}
}
