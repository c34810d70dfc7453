package summarizer

import (
	"regexp"
	"strings"
)

var (
	// Whitespace also covers the information separators U+001C..U+001F and NEL.
	reNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\x1c-\x1f\x{85}\p{Z}]+`)
	reWhitespace = regexp.MustCompile(`[\s\v\x1c-\x1f\x{85}\p{Z}]+`)
)

// Normalize strips everything that is neither a word character nor whitespace,
// collapses whitespace runs to a single space and trims the ends.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	text = reNonWord.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
