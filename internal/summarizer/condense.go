package summarizer

import (
	"context"
	"fmt"
	"strings"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// Defaults mirror the BART-large-CNN settings the reports were tuned on.
const (
	DefaultMaxLength      = 150
	DefaultMinLength      = 30
	DefaultBeams          = 4
	DefaultMaxInputTokens = 1024
)

// CondenseOptions are the decoding settings forwarded to the generator.
type CondenseOptions struct {
	MinLength      int
	MaxLength      int
	Beams          int
	MaxInputTokens int
	EarlyStopping  bool
}

// DefaultCondenseOptions returns beam width 4, length 30..150, 1024 input tokens, early stopping.
func DefaultCondenseOptions() CondenseOptions {
	return CondenseOptions{
		MinLength:      DefaultMinLength,
		MaxLength:      DefaultMaxLength,
		Beams:          DefaultBeams,
		MaxInputTokens: DefaultMaxInputTokens,
		EarlyStopping:  true,
	}
}

func (o CondenseOptions) withDefaults() CondenseOptions {
	def := DefaultCondenseOptions()
	if o.MinLength <= 0 {
		o.MinLength = def.MinLength
	}
	if o.MaxLength <= 0 {
		o.MaxLength = def.MaxLength
	}
	if o.Beams <= 0 {
		o.Beams = def.Beams
	}
	if o.MaxInputTokens <= 0 {
		o.MaxInputTokens = def.MaxInputTokens
	}
	return o
}

// Condenser turns selected sentences into one generated paragraph.
type Condenser struct {
	generator ports.Generator
	opts      CondenseOptions
}

// NewCondenser fills zero options with defaults.
func NewCondenser(generator ports.Generator, opts CondenseOptions) *Condenser {
	return &Condenser{generator: generator, opts: opts.withDefaults()}
}

// Condense joins sentences with single spaces, truncates the passage to the
// input token budget and asks the generator for a paragraph. An empty passage
// returns ErrInputEmpty without calling the model.
func (c *Condenser) Condense(ctx context.Context, sentences []string) (string, error) {
	passage := strings.TrimSpace(strings.Join(sentences, " "))
	if passage == "" {
		return "", domain.ErrInputEmpty
	}

	out, err := c.generator.Generate(ctx, ports.GenerateRequest{
		Passage:        TruncateTokens(passage, c.opts.MaxInputTokens),
		MinLength:      c.opts.MinLength,
		MaxLength:      c.opts.MaxLength,
		Beams:          c.opts.Beams,
		EarlyStopping:  c.opts.EarlyStopping,
		MaxInputTokens: c.opts.MaxInputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCondenserFailure, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: model returned empty output", domain.ErrCondenserFailure)
	}
	return out, nil
}

// TruncateTokens keeps at most limit whitespace separated tokens. Each word is
// at least one model token, so the generator still applies its own tokenizer
// limit on top.
func TruncateTokens(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= limit {
		return text
	}
	return strings.Join(fields[:limit], " ")
}
