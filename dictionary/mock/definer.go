package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/poiesic/wordweb/dictionary"
)

// Definer is a test double for dictionary.Definer. It is safe for
// concurrent use.
type Definer struct {
	// DefineFunc is called by Define if set. If nil, Define returns a
	// generated entry for every word.
	DefineFunc func(ctx context.Context, word, language string) (*dictionary.Entry, error)

	mu    sync.Mutex
	calls []string
}

var _ dictionary.Definer = (*Definer)(nil)

// NewDefiner creates a mock definer with default behavior.
// Returns the concrete type so tests can inspect calls.
func NewDefiner() *Definer {
	return &Definer{}
}

// Define records the call and returns DefineFunc's result or a generated
// entry.
func (d *Definer) Define(ctx context.Context, word, language string) (*dictionary.Entry, error) {
	d.mu.Lock()
	d.calls = append(d.calls, word)
	fn := d.DefineFunc
	d.mu.Unlock()

	if fn != nil {
		return fn(ctx, word, language)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &dictionary.Entry{
		Word:         word,
		Definition:   fmt.Sprintf("definition of %s", word),
		Translation:  strings.ToUpper(word),
		PartOfSpeech: "noun",
	}, nil
}

// CallCount returns the number of times Define was called.
func (d *Definer) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// Calls returns the words passed to Define in call order.
func (d *Definer) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Reset clears the recorded calls and the custom function.
func (d *Definer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
	d.DefineFunc = nil
}
