package dictionary

import (
	"context"
	"errors"
)

// ErrNoDefinition is returned when the source has no entry for a word.
var ErrNoDefinition = errors.New("no definition found")

// Definer looks words up. Implementations must be safe for concurrent use.
type Definer interface {
	// Define returns the dictionary entry for word in language. It returns
	// an error wrapping ErrNoDefinition when the word is unknown.
	Define(ctx context.Context, word, language string) (*Entry, error)
}

// Entry is what a lookup knows about a word.
type Entry struct {
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	Definition    string `json:"definition"`
	Translation   string `json:"translation"`
	PartOfSpeech  string `json:"partOfSpeech"`
}

// Empty reports whether the entry carries no definition or translation.
func (e *Entry) Empty() bool {
	return e == nil || (e.Definition == "" && e.Translation == "")
}
