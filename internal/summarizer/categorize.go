package summarizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// Categorizer buckets sentences into topics by keyword membership.
type Categorizer struct {
	splitter ports.SentenceSplitter
	topics   []foldedTopic
}

type foldedTopic struct {
	name     string
	keywords []string
}

// NewCategorizer folds the topic keywords once; the topic list is copied.
func NewCategorizer(splitter ports.SentenceSplitter, topics []domain.Topic) *Categorizer {
	fold := cases.Fold()
	folded := make([]foldedTopic, 0, len(topics))
	for _, topic := range topics {
		ft := foldedTopic{name: topic.Name}
		for _, kw := range topic.Keywords {
			if kw == "" {
				continue
			}
			ft.keywords = append(ft.keywords, fold.String(kw))
		}
		folded = append(folded, ft)
	}
	return &Categorizer{splitter: splitter, topics: folded}
}

// Categorize splits text and assigns each sentence to every topic with a
// keyword occurring anywhere in it, case-insensitively. Every configured topic
// has an entry; sentences matching nothing are dropped.
func (c *Categorizer) Categorize(text string) (domain.CategorizedSentences, error) {
	sentences, err := c.splitter.Split(text)
	if err != nil {
		return nil, fmt.Errorf("split sentences: %w", err)
	}

	out := make(domain.CategorizedSentences, len(c.topics))
	for _, topic := range c.topics {
		out[topic.name] = nil
	}

	fold := cases.Fold()
	for _, sentence := range sentences {
		lowered := fold.String(sentence)
		for _, topic := range c.topics {
			if containsAny(lowered, topic.keywords) {
				out[topic.name] = append(out[topic.name], sentence)
			}
		}
	}

	return out, nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
