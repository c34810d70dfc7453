package summarizer

import (
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/ports"
)

// Rank scores a topic's sentences against each other. Output keeps input order.
func Rank(scorer ports.TermWeightScorer, sentences []string) []domain.ScoredSentence {
	if len(sentences) == 0 {
		return nil
	}

	scores := scorer.Score(sentences)
	ranked := make([]domain.ScoredSentence, len(sentences))
	for i, s := range sentences {
		var score float64
		if i < len(scores) && scores[i] > 0 {
			score = scores[i]
		}
		ranked[i] = domain.ScoredSentence{Text: s, Score: score}
	}
	return ranked
}
