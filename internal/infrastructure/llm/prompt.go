package llm

import (
	"fmt"
	"strings"

	"TranscriptDigest/internal/ports"
)

const defaultSystemPrompt = "You condense excerpts of earnings call transcripts into one factual paragraph. " +
	"Keep figures and names exactly as given and do not add information."

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}

// userPrompt phrases the beam-search length bounds as instructions; chat
// models take no min length, so it is stated in words.
func userPrompt(req ports.GenerateRequest) string {
	return fmt.Sprintf(
		"Summarize the passage below in a single paragraph of roughly %d to %d tokens. "+
			"Use complete sentences separated by \". \".\n\n%s",
		req.MinLength, req.MaxLength, req.Passage)
}
