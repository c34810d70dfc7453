package sentence

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"TranscriptDigest/internal/ports"
)

// Punkt splits English text with the pretrained punkt boundary model.
// The model is built on first use and shared afterwards.
type Punkt struct {
	once      sync.Once
	tokenizer *sentences.DefaultSentenceTokenizer
	err       error
}

var _ ports.SentenceSplitter = (*Punkt)(nil)

// NewPunkt returns a splitter; the punkt model loads lazily.
func NewPunkt() *Punkt {
	return &Punkt{}
}

// Split returns trimmed, non-empty sentences in document order.
func (p *Punkt) Split(text string) ([]string, error) {
	p.once.Do(func() {
		p.tokenizer, p.err = english.NewSentenceTokenizer(nil)
	})
	if p.err != nil {
		return nil, fmt.Errorf("load punkt model: %w", p.err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, s := range tokens {
		if s == nil {
			continue
		}
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
