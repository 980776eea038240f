package core

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMastery(t *testing.T) {
	tests := []struct {
		name       string
		mastery    int
		difficulty int
		correct    bool
		accuracy   float64
		want       int
	}{
		{"correct easy with bonus", 0, 1, true, 1.0, 13},
		{"correct difficulty 2 with bonus", 0, 2, true, 1.0, 11},
		{"wrong no adjustment", 50, 3, false, 0.5, 42},
		{"wrong floors at zero", 2, 5, false, 0.0, 0},
		{"correct caps at 100", 98, 1, true, 0.9, 100},
		{"correct middling accuracy", 50, 1, true, 0.6, 58},
		{"correct low accuracy penalty", 50, 1, true, 0.4, 55},
		{"difficulty 5 adds nothing", 30, 5, true, 0.7, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateMastery(tt.mastery, tt.difficulty, tt.correct, tt.accuracy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntervalDays(t *testing.T) {
	tests := []struct {
		name        string
		mastery     int
		accuracy    float64
		reviewCount int
		difficulty  int
		want        float64
	}{
		{"top tier grows x2 every 3", 85, 0.9, 6, 1, 4},
		{"top tier capped at 30", 85, 0.9, 30, 1, 30},
		{"top tier divided by difficulty", 85, 0.9, 30, 3, 10},
		{"high mastery low accuracy falls to second tier", 85, 0.7, 8, 1, 2.25},
		{"second tier", 65, 0.7, 8, 1, 2.25},
		{"second tier capped at 14", 65, 0.7, 100, 1, 14},
		{"third tier", 45, 0.5, 10, 1, 1.69},
		{"third tier capped at 7", 45, 0.5, 100, 1, 7},
		{"bottom tier floor", 10, 0.2, 0, 1, 1},
		{"bottom tier scales", 10, 0.2, 6, 1, 2},
		{"bottom tier cap and difficulty", 10, 0.2, 12, 2, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntervalDays(tt.mastery, tt.accuracy, tt.reviewCount, tt.difficulty)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestRecordReviewScenario(t *testing.T) {
	v := NewVocabulary("word", testNow)
	v.Difficulty = 2

	reviewed, id := v.RecordReview(true, 5, ReviewManual, testNow)

	assert.NotEmpty(t, id)
	assert.Equal(t, 11, reviewed.MasteryLevel)
	assert.Equal(t, 1, reviewed.ReviewCount)
	assert.Equal(t, 1, reviewed.CorrectCount)
	require.NotNil(t, reviewed.LastReviewAt)
	assert.Equal(t, testNow, *reviewed.LastReviewAt)
	require.NotNil(t, reviewed.NextReviewAt)
	assert.Equal(t, testNow.Add(12*time.Hour), *reviewed.NextReviewAt)

	require.Len(t, reviewed.ReviewHistory, 1)
	entry := reviewed.ReviewHistory[0]
	assert.Equal(t, id, entry.ID)
	assert.True(t, entry.IsCorrect)
	assert.Equal(t, 5, entry.TimeSpent)
	assert.Equal(t, 2, entry.DifficultyAtTime)
	assert.Equal(t, 0, entry.MasteryLevelBefore)

	assert.Equal(t, 0, v.ReviewCount, "receiver must not change")
	assert.Empty(t, v.ReviewHistory)
	assert.Equal(t, 2, reviewed.Version)
}

func TestRecordReviewProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	v := NewVocabulary("word", testNow)
	now := testNow
	correct := 0

	for i := 0; i < 500; i++ {
		if i%50 == 0 {
			var err error
			v, err = v.WithDifficulty(1+rng.IntN(5), now)
			require.NoError(t, err)
		}
		ok := rng.IntN(3) > 0
		if ok {
			correct++
		}
		now = now.Add(time.Hour)
		v, _ = v.RecordReview(ok, rng.IntN(30), ReviewQuiz, now)

		require.GreaterOrEqual(t, v.MasteryLevel, 0)
		require.LessOrEqual(t, v.MasteryLevel, 100)
		require.True(t, v.NextReviewAt.After(now))
	}

	assert.Equal(t, 500, v.ReviewCount)
	assert.Equal(t, correct, v.CorrectCount)
	assert.Len(t, v.ReviewHistory, 500)
}

func TestWithDifficultyNeverReviewed(t *testing.T) {
	v := NewVocabulary("word", testNow)
	assert.Nil(t, v.NextReviewAt)

	v, err := v.WithDifficulty(4, testNow)
	require.NoError(t, err)
	require.NotNil(t, v.NextReviewAt)
	assert.Equal(t, testNow.Add(FirstReviewInterval), *v.NextReviewAt)

	_, err = v.WithDifficulty(6, testNow)
	assert.ErrorIs(t, err, ErrDifficultyOutOfRange)
}

func TestNeedsReview(t *testing.T) {
	v := NewVocabulary("word", testNow)
	assert.True(t, v.NeedsReview(testNow), "unscheduled words are due")

	due := testNow
	v.NextReviewAt = &due
	assert.True(t, v.NeedsReview(testNow), "due exactly now")

	future := testNow.Add(time.Microsecond)
	v.NextReviewAt = &future
	assert.False(t, v.NeedsReview(testNow), "due one microsecond later")
}

func TestReviewStats(t *testing.T) {
	v := NewVocabulary("word", testNow)
	now := testNow
	// 12 reviews: first two wrong, remaining ten correct.
	for i := 0; i < 12; i++ {
		now = now.Add(time.Minute)
		v, _ = v.RecordReview(i >= 2, 1, ReviewAuto, now)
	}

	stats := v.ReviewStats(now)
	assert.Equal(t, 12, stats.ReviewCount)
	assert.Equal(t, 10, stats.CorrectCount)
	assert.Equal(t, 83, stats.AccuracyRate)
	assert.Equal(t, 100, stats.RecentAccuracy)

	empty := NewVocabulary("fresh", testNow).ReviewStats(testNow)
	assert.Equal(t, 0, empty.AccuracyRate)
	assert.Equal(t, 0, empty.RecentAccuracy)
	assert.True(t, empty.NeedsReview)
}

func TestVocabularySummary(t *testing.T) {
	v := NewVocabulary("chat", testNow).
		WithDefinition("a cat", "cat", "noun", "/ʃa/", testNow).
		AddTag("animals", testNow)
	v, _ = v.RecordReview(true, 3, ReviewQuiz, testNow)

	s := v.Summary(testNow)
	assert.Equal(t, v.ID, s.ID)
	assert.Equal(t, "chat", s.Word)
	assert.Equal(t, "cat", s.Translation)
	assert.Equal(t, "/ʃa/", s.Pronunciation)
	assert.Equal(t, 1, s.ReviewCount)
	assert.False(t, s.NeedsReview)
	assert.Equal(t, []string{"animals"}, s.Tags)
	assert.True(t, s.IsActive)

	s.Tags[0] = "changed"
	assert.Equal(t, "animals", v.Tags[0])
}
