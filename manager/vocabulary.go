package manager

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
)

// DefaultReviewLimit is the size of a review queue when none is given.
const DefaultReviewLimit = 20

func vocabularyRecord(v core.Vocabulary) core.Record { return v.Record }

// SaveVocabulary validates and stores v. An active word may not duplicate
// the word of another active record, compared case-insensitively.
func (m *Manager) SaveVocabulary(ctx context.Context, v core.Vocabulary) error {
	if err := v.Validate(); err != nil {
		return err
	}
	m.vocabMu.Lock()
	defer m.vocabMu.Unlock()

	if v.IsActive {
		existing, err := m.FindVocabularyByWord(ctx, v.Word)
		switch {
		case err == nil && existing.ID != v.ID:
			return fmt.Errorf("%w: %q", ErrDuplicateWord, v.Word)
		case err != nil && !isNotFound(err):
			return err
		}
	}
	return save(ctx, m, storage.CollectionVocabulary, v.ID, v)
}

// GetVocabulary returns the vocabulary record with id, active or not.
func (m *Manager) GetVocabulary(ctx context.Context, id string) (core.Vocabulary, error) {
	return load[core.Vocabulary](ctx, m, storage.CollectionVocabulary, id)
}

// FindVocabularyByWord returns the active record holding word.
func (m *Manager) FindVocabularyByWord(ctx context.Context, word string) (core.Vocabulary, error) {
	all, err := m.GetAllVocabulary(ctx)
	if err != nil {
		return core.Vocabulary{}, err
	}
	want := strings.ToLower(strings.TrimSpace(word))
	for _, v := range all {
		if v.NormalizedWord() == want {
			return v, nil
		}
	}
	return core.Vocabulary{}, fmt.Errorf("%w: word %q", ErrNotFound, word)
}

// GetAllVocabulary returns the active vocabulary.
func (m *Manager) GetAllVocabulary(ctx context.Context) ([]core.Vocabulary, error) {
	all, err := m.ListVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(v core.Vocabulary) bool { return !v.IsActive }), nil
}

// ListVocabulary returns every vocabulary record including inactive ones.
func (m *Manager) ListVocabulary(ctx context.Context) ([]core.Vocabulary, error) {
	return loadAll(ctx, m, storage.CollectionVocabulary, vocabularyRecord)
}

// UpdateVocabulary applies fn to the stored record and saves the result.
func (m *Manager) UpdateVocabulary(ctx context.Context, id string, fn func(core.Vocabulary, time.Time) (core.Vocabulary, error)) (core.Vocabulary, error) {
	v, err := m.GetVocabulary(ctx, id)
	if err != nil {
		return core.Vocabulary{}, err
	}
	v, err = fn(v, m.now())
	if err != nil {
		return core.Vocabulary{}, err
	}
	if err := m.SaveVocabulary(ctx, v); err != nil {
		return core.Vocabulary{}, err
	}
	return v, nil
}

// DeleteVocabulary deactivates the record.
func (m *Manager) DeleteVocabulary(ctx context.Context, id string) (core.Vocabulary, error) {
	return m.UpdateVocabulary(ctx, id, func(v core.Vocabulary, now time.Time) (core.Vocabulary, error) {
		return v.WithActive(false, now), nil
	})
}

// ReviewVocabulary records a review of the word and reschedules it.
func (m *Manager) ReviewVocabulary(ctx context.Context, id string, correct bool, seconds int, reviewType core.ReviewType) (core.Vocabulary, error) {
	return m.UpdateVocabulary(ctx, id, func(v core.Vocabulary, now time.Time) (core.Vocabulary, error) {
		v, _ = v.RecordReview(correct, seconds, reviewType, now)
		return v, nil
	})
}

// GetVocabularyForReview returns up to limit active words that are due,
// least mastered first, then least recently reviewed with never-reviewed
// words ahead of the rest. A limit below 1 means DefaultReviewLimit.
func (m *Manager) GetVocabularyForReview(ctx context.Context, limit int) ([]core.Vocabulary, error) {
	if limit < 1 {
		limit = DefaultReviewLimit
	}
	all, err := m.GetAllVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	now := m.now()
	due := slices.DeleteFunc(all, func(v core.Vocabulary) bool { return !v.NeedsReview(now) })
	slices.SortStableFunc(due, func(a, b core.Vocabulary) int {
		return cmp.Or(
			cmp.Compare(a.MasteryLevel, b.MasteryLevel),
			compareTimes(a.LastReviewAt, b.LastReviewAt),
		)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// compareTimes orders nil before any time.
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
