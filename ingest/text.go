package ingest

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// Stop words never offered as key words.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "in": true,
	"that": true, "have": true, "has": true, "it": true, "its": true, "for": true,
	"not": true, "on": true, "with": true, "as": true, "you": true, "do": true,
	"at": true, "this": true, "but": true, "by": true, "from": true, "or": true,
	"he": true, "she": true, "they": true, "we": true, "i": true, "his": true,
	"her": true, "their": true, "our": true, "my": true, "your": true, "so": true,
	"if": true, "then": true, "there": true, "which": true, "who": true,
	"what": true, "when": true, "will": true, "would": true, "can": true,
	"could": true, "been": true, "had": true, "did": true, "no": true,
	"all": true, "one": true, "into": true, "than": true, "them": true,
}

const punctuation = ".,!?;:'\"-()[]{}«»“”‘’…"

// tokenize splits text into lowercased words with surrounding punctuation
// removed, dropping stop words and tokens without letters.
func tokenize(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, punctuation))
		if cleaned == "" || stopWords[cleaned] || !strings.ContainsFunc(cleaned, unicode.IsLetter) {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// KeyWords returns up to n distinct content words of text, most frequent
// first. Ties keep the order of first appearance. Words shorter than
// minLength runes are ignored.
func KeyWords(text string, n, minLength int) []string {
	if n < 1 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for _, w := range tokenize(text) {
		if len([]rune(w)) < minLength {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Sentences splits text at sentence-ending punctuation and line breaks.
func Sentences(text string) []string {
	var out []string
	start := 0
	flush := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range text {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			flush(i + len(string(r)))
		case '\n':
			flush(i)
		}
	}
	flush(len(text))
	return out
}

// contextFor returns the first sentence containing word as a token.
func contextFor(sentences []string, word string) string {
	for _, s := range sentences {
		if slices.Contains(tokenize(s), word) {
			return s
		}
	}
	return ""
}

// ParseTags splits a comma separated tag list, trimming blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
