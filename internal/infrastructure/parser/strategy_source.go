package parser

import (
	"context"
	"fmt"
	"log/slog"

	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
	"TranscriptDigest/internal/scanner"
)

// StrategySource implements TranscriptSource via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	cfg      config.SourceConfig
	logger   *slog.Logger
}

var _ ports.TranscriptSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured source.
func NewStrategySource(reg *scanner.Registry, cfg config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		cfg:      cfg,
		logger:   log,
	}
}

// Fetch resolves the configured scanner and downloads one transcript.
func (s *StrategySource) Fetch(ctx context.Context, key domain.TranscriptKey) (string, error) {
	if s.registry == nil {
		return "", fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.cfg.Scanner)
	if err != nil {
		return "", err
	}

	s.debug("fetch transcript", "key", key.String(), "scanner", s.cfg.Scanner)

	text, err := strategy.Fetch(ctx, scanner.Request{
		Key:         key,
		URLTemplate: s.cfg.URLTemplate,
		Options:     s.cfg.Options,
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", s.cfg.Scanner, err)
	}
	return text, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
