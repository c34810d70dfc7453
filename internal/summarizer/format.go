package summarizer

import (
	"strings"

	"TranscriptDigest/internal/domain"
)

// Format renders topics present in summary, in the given order, as a header
// line followed by one "- " bullet per ". " separated fragment and a blank
// line. Identical input yields identical bytes; an empty summary yields "".
func Format(order []string, summary domain.Summary) string {
	var b strings.Builder
	for _, topic := range order {
		paragraph, ok := summary[topic]
		if !ok {
			continue
		}
		b.WriteString(topic)
		b.WriteString("\n")
		for _, point := range strings.Split(paragraph, ". ") {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(point))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
