package openai

import "strings"

// cleanWord strips surrounding punctuation and whitespace from a word
// picked out of running text.
func cleanWord(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || strings.ContainsRune(".,!?;:\"'()[]{}—–-«»“”‘’", r)
	})
}

// stripFences removes a markdown code fence around a model response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
