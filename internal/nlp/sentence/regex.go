package sentence

import (
	"regexp"
	"strings"

	"TranscriptDigest/internal/ports"
)

var reSentence = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)

// Regex splits on runs of sentence terminators. Text without terminators is
// one sentence.
type Regex struct{}

var _ ports.SentenceSplitter = Regex{}

// Split never fails.
func (Regex) Split(text string) ([]string, error) {
	matches := reSentence.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
