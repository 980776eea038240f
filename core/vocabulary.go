package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ReviewType identifies how a review was performed.
type ReviewType string

const (
	ReviewManual ReviewType = "manual"
	ReviewQuiz   ReviewType = "quiz"
	ReviewAuto   ReviewType = "auto"
)

// ParseReviewType validates the textual form of a review type.
func ParseReviewType(s string) (ReviewType, error) {
	switch t := ReviewType(s); t {
	case ReviewManual, ReviewQuiz, ReviewAuto:
		return t, nil
	case "":
		return ReviewManual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReviewType, s)
}

// Default values written by the 1.0.1 schema.
const (
	DefaultReviewAlgorithm = "spaced-repetition"
	DefaultRetentionRate   = 0.8
)

// ExampleSentence is a usage example attached to a word.
type ExampleSentence struct {
	ID          string    `json:"id"`
	Sentence    string    `json:"sentence"`
	Translation string    `json:"translation"`
	AddedAt     time.Time `json:"addedAt"`
}

// ReviewRecord is one entry of a word's review history.
type ReviewRecord struct {
	ID                 string     `json:"id"`
	IsCorrect          bool       `json:"isCorrect"`
	TimeSpent          int        `json:"timeSpent"` // seconds
	ReviewType         ReviewType `json:"reviewType"`
	ReviewedAt         time.Time  `json:"reviewedAt"`
	DifficultyAtTime   int        `json:"difficultyAtTime"`
	MasteryLevelBefore int        `json:"masteryLevelBefore"`
}

// Vocabulary is a word on the learner's review list.
type Vocabulary struct {
	Record
	Word             string            `json:"word"`
	Pronunciation    string            `json:"pronunciation"`
	Definition       string            `json:"definition"`
	Translation      string            `json:"translation"`
	Language         string            `json:"language"`
	PartOfSpeech     string            `json:"partOfSpeech"`
	Contexts         []ExampleSentence `json:"contexts"`
	Difficulty       int               `json:"difficulty"`
	ReviewCount      int               `json:"reviewCount"`
	CorrectCount     int               `json:"correctCount"`
	LastReviewAt     *time.Time        `json:"lastReviewAt"`
	NextReviewAt     *time.Time        `json:"nextReviewAt"`
	MasteryLevel     int               `json:"masteryLevel"`
	Tags             []string          `json:"tags"`
	SourceDocumentID *string           `json:"sourceDocumentId"`
	IsActive         bool              `json:"isActive"`
	ReviewHistory    []ReviewRecord    `json:"reviewHistory"`
	Notes            string            `json:"notes"`
	AudioURL         string            `json:"audioUrl"`
	ImageURL         string            `json:"imageUrl"`
	ReviewAlgorithm  string            `json:"reviewAlgorithm,omitempty"`
	RetentionRate    float64           `json:"retentionRate,omitempty"`
}

// UnmarshalJSON applies defaults for fields absent in older records.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	type plain Vocabulary
	p := plain{Language: "English", Difficulty: 1, IsActive: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Vocabulary(p)
	return nil
}

// NewVocabulary creates an active, never-reviewed word.
func NewVocabulary(word string, now time.Time) Vocabulary {
	return Vocabulary{
		Record:          NewRecord(now),
		Word:            strings.TrimSpace(word),
		Language:        "English",
		Contexts:        []ExampleSentence{},
		Difficulty:      1,
		Tags:            []string{},
		IsActive:        true,
		ReviewHistory:   []ReviewRecord{},
		ReviewAlgorithm: DefaultReviewAlgorithm,
		RetentionRate:   DefaultRetentionRate,
	}
}

func (v Vocabulary) clone() Vocabulary {
	v.Contexts = slices.Clone(v.Contexts)
	v.LastReviewAt = cloneTime(v.LastReviewAt)
	v.NextReviewAt = cloneTime(v.NextReviewAt)
	v.Tags = slices.Clone(v.Tags)
	if v.SourceDocumentID != nil {
		id := *v.SourceDocumentID
		v.SourceDocumentID = &id
	}
	v.ReviewHistory = slices.Clone(v.ReviewHistory)
	return v
}

func (v Vocabulary) stamp(now time.Time) Vocabulary {
	v.Record = v.stamped(now)
	return v
}

// NormalizedWord is the key used for uniqueness checks.
func (v Vocabulary) NormalizedWord() string {
	return strings.ToLower(strings.TrimSpace(v.Word))
}

// AddContext attaches an example sentence and returns its id.
func (v Vocabulary) AddContext(sentence, translation string, now time.Time) (Vocabulary, string) {
	c := ExampleSentence{
		ID:          NewID(),
		Sentence:    strings.TrimSpace(sentence),
		Translation: strings.TrimSpace(translation),
		AddedAt:     now.UTC(),
	}
	v = v.clone()
	v.Contexts = append(v.Contexts, c)
	return v.stamp(now), c.ID
}

// RemoveContext removes example id if present.
func (v Vocabulary) RemoveContext(id string, now time.Time) Vocabulary {
	i := slices.IndexFunc(v.Contexts, func(c ExampleSentence) bool { return c.ID == id })
	if i < 0 {
		return v
	}
	v = v.clone()
	v.Contexts = slices.Delete(v.Contexts, i, i+1)
	return v.stamp(now)
}

// RecordReview logs a review outcome, then updates mastery and schedules the
// next review, in that order. It returns the id of the history entry.
func (v Vocabulary) RecordReview(correct bool, timeSpent int, reviewType ReviewType, now time.Time) (Vocabulary, string) {
	now = now.UTC()
	entry := ReviewRecord{
		ID:                 NewID(),
		IsCorrect:          correct,
		TimeSpent:          timeSpent,
		ReviewType:         reviewType,
		ReviewedAt:         now,
		DifficultyAtTime:   v.Difficulty,
		MasteryLevelBefore: v.MasteryLevel,
	}
	v = v.clone()
	v.ReviewHistory = append(v.ReviewHistory, entry)
	v.ReviewCount++
	if correct {
		v.CorrectCount++
	}
	v.LastReviewAt = timePtr(now)
	v.MasteryLevel = UpdateMastery(v.MasteryLevel, v.Difficulty, correct, Accuracy(v.CorrectCount, v.ReviewCount))
	v.NextReviewAt = timePtr(v.nextReview(now))
	return v.stamp(now), entry.ID
}

func (v Vocabulary) nextReview(now time.Time) time.Time {
	if v.LastReviewAt == nil {
		return now.Add(FirstReviewInterval)
	}
	return now.Add(NextReviewInterval(v.MasteryLevel, Accuracy(v.CorrectCount, v.ReviewCount), v.ReviewCount, v.Difficulty))
}

// WithDifficulty sets the difficulty (1-5) and reschedules the next review.
func (v Vocabulary) WithDifficulty(difficulty int, now time.Time) (Vocabulary, error) {
	if difficulty < 1 || difficulty > 5 {
		return v, ErrDifficultyOutOfRange
	}
	v = v.clone()
	v.Difficulty = difficulty
	v.NextReviewAt = timePtr(v.nextReview(now.UTC()))
	return v.stamp(now), nil
}

// NeedsReview reports whether the word is due at now.
func (v Vocabulary) NeedsReview(now time.Time) bool {
	return v.NextReviewAt == nil || !now.Before(*v.NextReviewAt)
}

// AddTag adds a trimmed tag if it is new.
func (v Vocabulary) AddTag(tag string, now time.Time) Vocabulary {
	tags, changed := addUnique(v.Tags, strings.TrimSpace(tag))
	if !changed {
		return v
	}
	v = v.clone()
	v.Tags = tags
	return v.stamp(now)
}

// RemoveTag removes tag if present.
func (v Vocabulary) RemoveTag(tag string, now time.Time) Vocabulary {
	tags, changed := removeValue(v.Tags, tag)
	if !changed {
		return v
	}
	v = v.clone()
	v.Tags = tags
	return v.stamp(now)
}

// WithSourceDocument links the word to the document it was found in.
func (v Vocabulary) WithSourceDocument(documentID string, now time.Time) Vocabulary {
	v = v.clone()
	if documentID == "" {
		v.SourceDocumentID = nil
	} else {
		v.SourceDocumentID = &documentID
	}
	return v.stamp(now)
}

// WithActive sets the active flag. Inactive words are soft-deleted.
func (v Vocabulary) WithActive(active bool, now time.Time) Vocabulary {
	v = v.clone()
	v.IsActive = active
	return v.stamp(now)
}

// WithNotes replaces the learner's notes.
func (v Vocabulary) WithNotes(notes string, now time.Time) Vocabulary {
	v = v.clone()
	v.Notes = strings.TrimSpace(notes)
	return v.stamp(now)
}

// WithLanguage sets the language tag.
func (v Vocabulary) WithLanguage(language string, now time.Time) Vocabulary {
	v = v.clone()
	v.Language = language
	return v.stamp(now)
}

// WithDefinition fills the dictionary fields. Empty arguments keep the
// current value.
func (v Vocabulary) WithDefinition(definition, translation, partOfSpeech, pronunciation string, now time.Time) Vocabulary {
	v = v.clone()
	if definition != "" {
		v.Definition = definition
	}
	if translation != "" {
		v.Translation = translation
	}
	if partOfSpeech != "" {
		v.PartOfSpeech = partOfSpeech
	}
	if pronunciation != "" {
		v.Pronunciation = pronunciation
	}
	return v.stamp(now)
}

// ReviewStats summarizes a word's review performance. Rates are percentages.
type ReviewStats struct {
	ReviewCount    int        `json:"reviewCount"`
	CorrectCount   int        `json:"correctCount"`
	AccuracyRate   int        `json:"accuracyRate"`
	MasteryLevel   int        `json:"masteryLevel"`
	Difficulty     int        `json:"difficulty"`
	NeedsReview    bool       `json:"needsReview"`
	NextReviewAt   *time.Time `json:"nextReviewAt"`
	LastReviewAt   *time.Time `json:"lastReviewAt"`
	RecentAccuracy int        `json:"recentAccuracy"`
}

// RecentReviewWindow is the number of reviews used for recent accuracy.
const RecentReviewWindow = 10

func (v Vocabulary) ReviewStats(now time.Time) ReviewStats {
	recent := v.ReviewHistory
	if len(recent) > RecentReviewWindow {
		recent = recent[len(recent)-RecentReviewWindow:]
	}
	recentCorrect := 0
	for _, r := range recent {
		if r.IsCorrect {
			recentCorrect++
		}
	}
	return ReviewStats{
		ReviewCount:    v.ReviewCount,
		CorrectCount:   v.CorrectCount,
		AccuracyRate:   percent(v.CorrectCount, v.ReviewCount),
		MasteryLevel:   v.MasteryLevel,
		Difficulty:     v.Difficulty,
		NeedsReview:    v.NeedsReview(now),
		NextReviewAt:   cloneTime(v.NextReviewAt),
		LastReviewAt:   cloneTime(v.LastReviewAt),
		RecentAccuracy: percent(recentCorrect, len(recent)),
	}
}

// VocabularySummary is the listing view of a word.
type VocabularySummary struct {
	ID            string     `json:"id"`
	Word          string     `json:"word"`
	Pronunciation string     `json:"pronunciation"`
	Definition    string     `json:"definition"`
	Translation   string     `json:"translation"`
	Language      string     `json:"language"`
	PartOfSpeech  string     `json:"partOfSpeech"`
	Difficulty    int        `json:"difficulty"`
	MasteryLevel  int        `json:"masteryLevel"`
	ReviewCount   int        `json:"reviewCount"`
	LastReviewAt  *time.Time `json:"lastReviewAt"`
	NextReviewAt  *time.Time `json:"nextReviewAt"`
	NeedsReview   bool       `json:"needsReview"`
	Tags          []string   `json:"tags"`
	IsActive      bool       `json:"isActive"`
}

// Summary returns the listing view as of now.
func (v Vocabulary) Summary(now time.Time) VocabularySummary {
	return VocabularySummary{
		ID:            v.ID,
		Word:          v.Word,
		Pronunciation: v.Pronunciation,
		Definition:    v.Definition,
		Translation:   v.Translation,
		Language:      v.Language,
		PartOfSpeech:  v.PartOfSpeech,
		Difficulty:    v.Difficulty,
		MasteryLevel:  v.MasteryLevel,
		ReviewCount:   v.ReviewCount,
		LastReviewAt:  cloneTime(v.LastReviewAt),
		NextReviewAt:  cloneTime(v.NextReviewAt),
		NeedsReview:   v.NeedsReview(now),
		Tags:          slices.Clone(v.Tags),
		IsActive:      v.IsActive,
	}
}
