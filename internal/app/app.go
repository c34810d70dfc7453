package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/infrastructure/cache"
	"TranscriptDigest/internal/infrastructure/email"
	"TranscriptDigest/internal/infrastructure/llm"
	"TranscriptDigest/internal/infrastructure/ml"
	"TranscriptDigest/internal/infrastructure/natsbus"
	"TranscriptDigest/internal/infrastructure/parser"
	"TranscriptDigest/internal/infrastructure/storage"
	"TranscriptDigest/internal/infrastructure/telegram"
	"TranscriptDigest/internal/nlp/sentence"
	"TranscriptDigest/internal/nlp/tfidf"
	"TranscriptDigest/internal/ports"
	"TranscriptDigest/internal/scanner"
	"TranscriptDigest/internal/summarizer"
	"TranscriptDigest/internal/usecase"
)

// Application wires configs to use cases and owns the opened resources.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	batch    *usecase.Batch
	closers  []func() error
}

// New builds a runnable application instance. Call Close when done.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = slog.New(slog.DiscardHandler)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	engine, err := a.buildEngine(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := a.buildRepository(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	notifiers, err := a.buildNotifiers()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewEarningsCallScanner(
		&http.Client{Timeout: cfg.Source.Timeout},
		baseLogger.With("component", "scanner.earningscall"),
	))
	source := parser.NewStrategySource(registry, cfg.Source, baseLogger.With("component", "source"))

	a.pipeline, err = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repo,
		Summarizer: engine,
		Notifiers:  notifiers,
		Logger:     baseLogger.With("component", "pipeline"),
		Force:      cfg.Batch.Force,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.batch = usecase.NewBatch(a.pipeline, baseLogger.With("component", "batch"))
	return a, nil
}

// ProcessKey fetches and summarizes one transcript.
func (a *Application) ProcessKey(ctx context.Context, key domain.TranscriptKey) (domain.Transcript, error) {
	return a.pipeline.Process(ctx, key)
}

// ProcessFile summarizes a transcript read from a local file instead of the source.
func (a *Application) ProcessFile(ctx context.Context, key domain.TranscriptKey, path string) (domain.Transcript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("read transcript file: %w", err)
	}
	return a.pipeline.ProcessDocument(ctx, domain.Transcript{Key: key, Content: string(raw)})
}

// RunBatch processes the cartesian product of symbols and quarters for year.
func (a *Application) RunBatch(ctx context.Context, year int, symbols []string, quarters []int) (usecase.BatchReport, error) {
	return a.batch.Run(ctx, year, symbols, quarters)
}

// Close releases database and bus connections in reverse order of opening.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Application) buildEngine(ctx context.Context) (*summarizer.Engine, error) {
	sc := a.cfg.Summarizer

	generator, err := a.buildGenerator(ctx)
	if err != nil {
		return nil, err
	}
	generator = cache.NewGenerator(generator, sc.CacheTTL)

	var splitter ports.SentenceSplitter = sentence.NewPunkt()
	if sc.Splitter == "regex" {
		splitter = sentence.Regex{}
	}

	topics := make([]domain.Topic, 0, len(sc.Topics))
	for _, t := range sc.Topics {
		topics = append(topics, domain.Topic{Name: t.Name, Keywords: t.Keywords})
	}

	return summarizer.New(topics, summarizer.Deps{
		Splitter:  splitter,
		Scorer:    tfidf.Scorer{},
		Generator: generator,
		Logger:    a.logger.With("component", "summarizer"),
	}, summarizer.Options{
		SentencesPerTopic: sc.SentencesPerTopic,
		Workers:           sc.Workers,
		Condense: summarizer.CondenseOptions{
			MinLength:      sc.MinLength,
			MaxLength:      sc.MaxLength,
			Beams:          sc.Beams,
			MaxInputTokens: sc.MaxInputTokens,
			EarlyStopping:  sc.EarlyStopping,
		},
	})
}

// buildGenerator loads the seq2seq model up front so an unreachable or
// mismatched inference service fails startup instead of every topic.
func (a *Application) buildGenerator(ctx context.Context) (ports.Generator, error) {
	switch a.cfg.Summarizer.Provider {
	case config.ProviderOpenAI:
		c, err := llm.NewOpenAIClient(a.cfg.ChatGPT)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(a.cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderSeq2Seq, "":
		c := ml.NewClient(a.cfg.ML.InferenceURL, a.cfg.ML.APIKey, a.cfg.ML.Model,
			&http.Client{Timeout: a.cfg.ML.Timeout})
		info, err := c.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("seq2seq model: %w", err)
		}
		a.logger.Info("seq2seq model loaded", "model", info.Name, "max_input_tokens", info.MaxInputTokens)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", a.cfg.Summarizer.Provider)
	}
}

func (a *Application) buildRepository(ctx context.Context) (ports.TranscriptRepository, error) {
	if a.cfg.Database.DSN == "" {
		a.logger.Info("using file storage", "dir", a.cfg.Storage.Dir)
		return storage.NewFileRepository(a.cfg.Storage.Dir), nil
	}

	db, err := sql.Open("postgres", a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	a.logger.Info("using postgres storage")
	return repo, nil
}

func (a *Application) buildNotifiers() ([]ports.Notifier, error) {
	nc := a.cfg.Notifications
	var notifiers []ports.Notifier

	if nc.Email.Enabled() {
		notifiers = append(notifiers, email.NewNotifier(nc.Email, a.logger.With("component", "notifier.email")))
	}
	if nc.Telegram.Enabled() {
		notifiers = append(notifiers, telegram.NewNotifier(nc.Telegram, nil))
	}
	if nc.NATS.URL != "" {
		pub, err := natsbus.Connect(nc.NATS.URL, nc.NATS.Subject)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pub.Close(); return nil })
		notifiers = append(notifiers, pub)
	}

	a.logger.Debug("notifiers configured", "count", len(notifiers))
	return notifiers, nil
}
