package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "qwen2.5:3b", cfg.Model)
	assert.Equal(t, "none", cfg.Token)
	assert.Equal(t, "English", cfg.TranslationLanguage)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfig())
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("https://api.openai.com/v1"),
			WithModel("gpt-4o-mini"),
			WithToken("sk-test"),
			WithTranslationLanguage("Chinese"),
		)

		assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.Equal(t, "Chinese", cfg.TranslationLanguage)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(WithHost(tt.host), WithToken(""))
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr string
	}{
		{"valid", nil, ""},
		{"missing host", []ConfigOption{WithHost("")}, "Host is required"},
		{"missing model", []ConfigOption{WithModel("")}, "Model is required"},
		{"missing language", []ConfigOption{WithTranslationLanguage(" ")}, "TranslationLanguage is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEntryEmpty(t *testing.T) {
	var nilEntry *Entry
	assert.True(t, nilEntry.Empty())
	assert.True(t, (&Entry{Word: "x", PartOfSpeech: "noun"}).Empty())
	assert.False(t, (&Entry{Translation: "chat"}).Empty())
}
