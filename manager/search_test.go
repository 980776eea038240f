package manager

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(docs []core.Document) []string {
	out := []string{}
	for _, d := range docs {
		out = append(out, d.Title)
	}
	return out
}

func words(vs []core.Vocabulary) []string {
	out := []string{}
	for _, v := range vs {
		out = append(out, v.Word)
	}
	return out
}

func seedDocuments(t *testing.T, m *Manager, clock *testClock) {
	t.Helper()
	ctx := context.Background()
	specs := []struct {
		title, content, language, folder string
		tags                             []string
		progress                         int
	}{
		{"Alpha", "the quick brown fox", "English", "", []string{"animals"}, 10},
		{"Beta", "le renard brun", "French", "Lang", []string{"fox"}, 50},
		{"Gamma", "nothing to see here at all", "English", "Lang", nil, 90},
		{"Delta", "Fox and hound", "English", "", nil, 0},
	}
	for _, s := range specs {
		now := clock.Tick()
		d := core.NewDocument(s.title, s.content, now).
			WithLanguage(s.language, now).
			WithFolderPath(s.folder, now)
		for _, tag := range s.tags {
			d = d.AddTag(tag, now)
		}
		d, err := d.WithReadingProgress(s.progress, now)
		require.NoError(t, err)
		require.NoError(t, m.SaveDocument(ctx, d))
	}
	hidden := core.NewDocument("Fox archive", "fox", clock.Tick()).Archive(clock.Now())
	require.NoError(t, m.SaveDocument(ctx, hidden))
}

func TestSearchDocuments(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	seedDocuments(t, m, clock)
	root, lang := "", "Lang"

	tests := []struct {
		name  string
		query string
		opts  DocumentSearchOptions
		want  []string
	}{
		{"default fields newest first", "fox", DocumentSearchOptions{}, []string{"Delta", "Beta", "Alpha"}},
		{"case insensitive", "FOX", DocumentSearchOptions{SortOrder: SortAsc}, []string{"Alpha", "Beta", "Delta"}},
		{"title only", "fox", DocumentSearchOptions{Fields: []string{"title"}}, []string{}},
		{"tags only", "anim", DocumentSearchOptions{Fields: []string{"tags"}}, []string{"Alpha"}},
		{"language filter", "", DocumentSearchOptions{Language: "French"}, []string{"Beta"}},
		{"root folder", "", DocumentSearchOptions{FolderPath: &root, SortBy: "title", SortOrder: SortAsc}, []string{"Alpha", "Delta"}},
		{"named folder", "", DocumentSearchOptions{FolderPath: &lang, SortBy: "title", SortOrder: SortAsc}, []string{"Beta", "Gamma"}},
		{"sort by progress", "", DocumentSearchOptions{SortBy: "readingProgress"}, []string{"Gamma", "Beta", "Alpha", "Delta"}},
		{"sort by word count asc", "", DocumentSearchOptions{SortBy: "wordCount", SortOrder: SortAsc}, []string{"Beta", "Delta", "Alpha", "Gamma"}},
		{"limit", "", DocumentSearchOptions{SortBy: "title", SortOrder: SortAsc, Limit: 2}, []string{"Alpha", "Beta"}},
		{"no match", "zebra", DocumentSearchOptions{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.SearchDocuments(ctx, tt.query, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestSearchRejectsUnknownFields(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.SearchDocuments(ctx, "x", DocumentSearchOptions{Fields: []string{"author"}})
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = m.SearchDocuments(ctx, "x", DocumentSearchOptions{SortBy: "size"})
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = m.SearchDocuments(ctx, "x", DocumentSearchOptions{SortOrder: "up"})
	assert.ErrorIs(t, err, ErrInvalidSortOrder)
	_, err = m.SearchVocabulary(ctx, "x", VocabularySearchOptions{Fields: []string{"content"}})
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = m.SearchVocabulary(ctx, "x", VocabularySearchOptions{SortBy: "title"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSearchVocabulary(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)

	specs := []struct {
		word, definition, translation, language string
		difficulty, mastery                     int
	}{
		{"chat", "a small feline", "cat", "French", 1, 20},
		{"chien", "a domestic canine", "dog", "French", 2, 60},
		{"cat", "small feline", "", "English", 1, 90},
		{"hound", "hunting dog", "", "English", 3, 40},
	}
	for _, s := range specs {
		now := clock.Tick()
		v := core.NewVocabulary(s.word, now).
			WithDefinition(s.definition, s.translation, "", "", now).
			WithLanguage(s.language, now)
		v, err := v.WithDifficulty(s.difficulty, now)
		require.NoError(t, err)
		v.MasteryLevel = s.mastery
		require.NoError(t, m.SaveVocabulary(ctx, v))
	}

	tests := []struct {
		name  string
		query string
		opts  VocabularySearchOptions
		want  []string
	}{
		{"default fields newest first", "cat", VocabularySearchOptions{}, []string{"cat", "chat"}},
		{"definition match", "DOG", VocabularySearchOptions{SortOrder: SortAsc}, []string{"chien", "hound"}},
		{"word only", "dog", VocabularySearchOptions{Fields: []string{"word"}}, []string{}},
		{"language", "", VocabularySearchOptions{Language: "French", SortBy: "word", SortOrder: SortAsc}, []string{"chat", "chien"}},
		{"difficulty", "", VocabularySearchOptions{Difficulty: 1, SortBy: "word", SortOrder: SortAsc}, []string{"cat", "chat"}},
		{"min mastery", "", VocabularySearchOptions{MinMastery: 50, SortBy: "masteryLevel"}, []string{"cat", "chien"}},
		{"limit", "", VocabularySearchOptions{SortBy: "difficulty", Limit: 1}, []string{"hound"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.SearchVocabulary(ctx, tt.query, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, words(got))
		})
	}
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	seedDocuments(t, m, clock)

	for i, word := range []string{"un", "deux", "trois"} {
		now := clock.Tick()
		v, err := core.NewVocabulary(word, now).WithLanguage("French", now).WithDifficulty(i+1, now)
		require.NoError(t, err)
		v.MasteryLevel = []int{10, 20, 31}[i]
		v.NextReviewAt = nil
		if i == 2 {
			next := now.Add(48 * time.Hour)
			v.NextReviewAt = &next
		}
		require.NoError(t, m.SaveVocabulary(ctx, v))
	}

	st, err := m.GetStatistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, DocumentStatistics{
		Total:              4,
		Languages:          map[string]int{"English": 3, "French": 1},
		TotalWords:         4 + 3 + 6 + 3,
		AvgReadingProgress: 38,
	}, st.Documents)

	assert.Equal(t, VocabularyStatistics{
		Total:                  3,
		NeedsReview:            2,
		Languages:              map[string]int{"French": 3},
		AvgMasteryLevel:        20,
		DifficultyDistribution: map[int]int{1: 1, 2: 1, 3: 1, 4: 0, 5: 0},
	}, st.Vocabulary)

	require.NotNil(t, st.Storage)
	assert.Equal(t, 8, st.Storage.ItemCount)
}

func TestStatisticsEmpty(t *testing.T) {
	m, _ := newTestManager(t)
	st, err := m.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Documents.Total)
	assert.Zero(t, st.Documents.AvgReadingProgress)
	assert.Zero(t, st.Vocabulary.AvgMasteryLevel)
	assert.Len(t, st.Vocabulary.DifficultyDistribution, 5)
}
