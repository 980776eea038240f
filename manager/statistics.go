package manager

import (
	"context"
	"math"

	"github.com/poiesic/wordweb/storage"
)

// UnknownLanguage labels records without a language.
const UnknownLanguage = "Unknown"

// DocumentStatistics aggregates the active documents.
type DocumentStatistics struct {
	Total              int            `json:"total"`
	Languages          map[string]int `json:"languages"`
	TotalWords         int            `json:"totalWords"`
	AvgReadingProgress int            `json:"avgReadingProgress"`
}

// VocabularyStatistics aggregates the active vocabulary.
type VocabularyStatistics struct {
	Total                  int            `json:"total"`
	NeedsReview            int            `json:"needsReview"`
	Languages              map[string]int `json:"languages"`
	AvgMasteryLevel        int            `json:"avgMasteryLevel"`
	DifficultyDistribution map[int]int    `json:"difficultyDistribution"`
}

// Statistics summarizes the store.
type Statistics struct {
	Documents  DocumentStatistics   `json:"documents"`
	Vocabulary VocabularyStatistics `json:"vocabulary"`
	Storage    *storage.Usage       `json:"storage"`
}

func languageKey(lang string) string {
	if lang == "" {
		return UnknownLanguage
	}
	return lang
}

func average(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// GetStatistics aggregates the active documents and vocabulary.
func (m *Manager) GetStatistics(ctx context.Context) (*Statistics, error) {
	docs, err := m.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	vocab, err := m.GetAllVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := m.adapter.UsageInfo(ctx)
	if err != nil {
		return nil, err
	}

	st := &Statistics{
		Documents: DocumentStatistics{
			Total:     len(docs),
			Languages: map[string]int{},
		},
		Vocabulary: VocabularyStatistics{
			Total:                  len(vocab),
			Languages:              map[string]int{},
			DifficultyDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		},
		Storage: usage,
	}

	progress := 0
	for _, d := range docs {
		st.Documents.Languages[languageKey(d.Language)]++
		st.Documents.TotalWords += d.WordCount
		progress += d.ReadingProgress
	}
	st.Documents.AvgReadingProgress = average(progress, len(docs))

	now := m.now()
	mastery := 0
	for _, v := range vocab {
		st.Vocabulary.Languages[languageKey(v.Language)]++
		st.Vocabulary.DifficultyDistribution[v.Difficulty]++
		mastery += v.MasteryLevel
		if v.NeedsReview(now) {
			st.Vocabulary.NeedsReview++
		}
	}
	st.Vocabulary.AvgMasteryLevel = average(mastery, len(vocab))
	return st, nil
}
