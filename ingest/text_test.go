package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyWords(t *testing.T) {
	text := "The cat sat. The cat ran! A dog saw the cat, and the dog barked at 42 birds."
	tests := []struct {
		name      string
		n         int
		minLength int
		want      []string
	}{
		{"most frequent first", 3, 0, []string{"cat", "dog", "sat"}},
		{"min length", 2, 4, []string{"barked", "birds"}},
		{"zero", 0, 0, nil},
		{"more than available", 100, 5, []string{"barked", "birds"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyWords(text, tt.n, tt.minLength))
		})
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second!\nThird line\n\nFourth? 第五。")
	assert.Equal(t, []string{"First one.", "Second!", "Third line", "Fourth?", "第五。"}, got)
}

func TestContextFor(t *testing.T) {
	sentences := Sentences("A cathedral stood. The cat slept.")
	assert.Equal(t, "The cat slept.", contextFor(sentences, "cat"))
	assert.Empty(t, contextFor(sentences, "dog"))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"news", "french", "b1"}, ParseTags(" news, french,,b1 "))
	assert.Nil(t, ParseTags(" , "))
}
