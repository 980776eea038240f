package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/wordweb/dictionary"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxAttempts bounds how often a malformed response is retried.
const maxAttempts = 3

// Definer looks words up with a chat model.
type Definer struct {
	client              llms.Model
	translationLanguage string
	logger              *slog.Logger
}

var _ dictionary.Definer = (*Definer)(nil)

type entryResponse struct {
	Found         bool   `json:"found"`
	Word          string `json:"word"`
	Pronunciation string `json:"pronunciation"`
	PartOfSpeech  string `json:"partOfSpeech"`
	Definition    string `json:"definition"`
	Translation   string `json:"translation"`
}

// NewDefiner creates a Definer from config.
func NewDefiner(config *dictionary.Config) (dictionary.Definer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}
	return newDefiner(client, config.TranslationLanguage), nil
}

func newDefiner(client llms.Model, translationLanguage string) *Definer {
	return &Definer{
		client:              client,
		translationLanguage: translationLanguage,
		logger:              slog.Default().With("component", "openai-definer"),
	}
}

// Define asks the model for an entry. Malformed responses are retried up to
// three times; transport errors are returned immediately.
func (d *Definer) Define(ctx context.Context, word, language string) (*dictionary.Entry, error) {
	word = cleanWord(word)
	if word == "" {
		return nil, fmt.Errorf("%w: empty word", dictionary.ErrNoDefinition)
	}
	if language == "" {
		language = "English"
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(language, d.translationLanguage))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(word)},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := d.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			d.logger.Error("failed to generate content", "word", word, "attempt", attempt, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("%w: %q: empty response", dictionary.ErrNoDefinition, word)
		}

		entry, err := parseEntry(response.Choices[0].Content)
		if err != nil {
			lastErr = err
			d.logger.Warn("error parsing dictionary response", "word", word, "attempt", attempt, "err", err)
			continue
		}
		if entry == nil {
			return nil, fmt.Errorf("%w: %q", dictionary.ErrNoDefinition, word)
		}
		if entry.Word == "" {
			entry.Word = word
		}
		d.logger.Debug("word defined", "word", word, "partOfSpeech", entry.PartOfSpeech)
		return entry, nil
	}
	return nil, fmt.Errorf("parsing dictionary response for %q: %w", word, lastErr)
}

// parseEntry decodes a model response. It returns nil without error when
// the model reports the word as unknown.
func parseEntry(content string) (*dictionary.Entry, error) {
	text := repairJSON(stripFences(content))
	var r entryResponse
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, err
	}
	if !r.Found {
		return nil, nil
	}
	entry := &dictionary.Entry{
		Word:          strings.TrimSpace(r.Word),
		Pronunciation: strings.TrimSpace(r.Pronunciation),
		Definition:    strings.TrimSpace(r.Definition),
		Translation:   strings.TrimSpace(r.Translation),
		PartOfSpeech:  strings.ToLower(strings.TrimSpace(r.PartOfSpeech)),
	}
	if entry.Empty() {
		return nil, errors.New("response has neither definition nor translation")
	}
	return entry, nil
}
