package summarizer

import (
	"sort"

	"TranscriptDigest/internal/domain"
)

// DefaultSentencesPerTopic is the selection size used when none is configured.
const DefaultSentencesPerTopic = 5

// SelectTop returns the n highest scoring sentences, ties kept in input
// order. The result has min(n, len(scored)) entries and is never padded.
func SelectTop(scored []domain.ScoredSentence, n int) []string {
	if n <= 0 || len(scored) == 0 {
		return nil
	}

	ordered := make([]domain.ScoredSentence, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	if n > len(ordered) {
		n = len(ordered)
	}
	top := make([]string, n)
	for i := range top {
		top[i] = ordered[i].Text
	}
	return top
}
