package providers

import (
	"strings"
)

// safetyQualifier is appended to every outgoing prompt.
const safetyQualifier = "professional, appropriate for public commercial display"

// denyList holds terms stripped from prompts before they leave the process.
// Matching is case-insensitive on whole words.
var denyList = []string{
	"nude", "naked", "nsfw", "gore", "blood", "violence", "violent",
	"weapon", "gun", "knife", "drug", "drugs", "alcohol", "tobacco",
	"gambling", "hate", "racist", "terror",
}

// SanitizePrompt truncates the prompt to maxLen runes, strips deny-listed
// sensitive terms, and appends the mandatory safety qualifier. The qualifier
// is excluded from the length budget so truncation can never remove it.
func SanitizePrompt(prompt string, maxLen int) string {
	prompt = strings.TrimSpace(prompt)

	if maxLen > 0 {
		runes := []rune(prompt)
		if len(runes) > maxLen {
			prompt = string(runes[:maxLen])
		}
	}

	words := strings.Fields(prompt)
	kept := words[:0]
	for _, word := range words {
		if !denied(word) {
			kept = append(kept, word)
		}
	}
	prompt = strings.Join(kept, " ")

	if prompt == "" {
		return safetyQualifier
	}
	return prompt + ", " + safetyQualifier
}

func denied(word string) bool {
	trimmed := strings.ToLower(strings.Trim(word, ".,;:!?()[]{}\"'"))
	for _, term := range denyList {
		if trimmed == term {
			return true
		}
	}
	return false
}
