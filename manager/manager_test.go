package manager

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/wordweb/core"
	"github.com/poiesic/wordweb/storage"
	"github.com/poiesic/wordweb/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

// Tick advances the clock by one second and returns the new time.
func (c *testClock) Tick() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *testClock) {
	t.Helper()
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	adapter, err := storage.NewAdapter(backend, storage.WithClock(clock.Now))
	require.NoError(t, err)

	opts = append([]Option{WithClock(clock.Now), WithPoolSize(2)}, opts...)
	m, err := New(adapter, opts...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, clock
}

func addDocument(t *testing.T, m *Manager, clock *testClock, title, content string) core.Document {
	t.Helper()
	d := core.NewDocument(title, content, clock.Tick())
	require.NoError(t, m.SaveDocument(context.Background(), d))
	return d
}

func addWord(t *testing.T, m *Manager, clock *testClock, word string) core.Vocabulary {
	t.Helper()
	v := core.NewVocabulary(word, clock.Tick())
	require.NoError(t, m.SaveVocabulary(context.Background(), v))
	return v
}

func TestNewRequiresAdapter(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrAdapterRequired)
}

func TestDocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)

	d := addDocument(t, m, clock, "T", "a b c")
	assert.Equal(t, 3, d.WordCount)

	got, err := m.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Title, got.Title)

	other := addDocument(t, m, clock, "Other", "x")
	archived := addDocument(t, m, clock, "Old", "y")
	_, err = m.ArchiveDocument(ctx, archived.ID)
	require.NoError(t, err)

	deleted, err := m.DeleteDocument(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusDeleted, deleted.Status)
	assert.Equal(t, 2, deleted.Version)

	active, err := m.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, d.ID, active[0].ID)

	all, err := m.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	gone, err := m.ListDocuments(ctx, core.StatusDeleted, core.StatusArchived)
	require.NoError(t, err)
	assert.Len(t, gone, 2)

	restored, err := m.RestoreDocument(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusActive, restored.Status)

	require.NoError(t, m.PurgeDocument(ctx, other.ID))
	_, err = m.GetDocument(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.DeleteDocument(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)

	d := core.NewDocument("", "body", clock.Tick())
	assert.ErrorIs(t, m.SaveDocument(ctx, d), core.ErrInvalidDocument)
	_, err := m.GetDocument(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound, "invalid records are never persisted")

	v := core.NewVocabulary(" ", clock.Tick())
	assert.ErrorIs(t, m.SaveVocabulary(ctx, v), core.ErrInvalidVocabulary)

	u := core.NewUser("", "x", "", clock.Tick())
	assert.ErrorIs(t, m.SaveUser(ctx, u), core.ErrInvalidUser)
}

func TestUpdateDocumentKeepsStoreOnError(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	d := addDocument(t, m, clock, "Title", "one two")

	_, err := m.UpdateDocument(ctx, d.ID, func(d core.Document, now time.Time) (core.Document, error) {
		return d.WithReadingProgress(150, now)
	})
	assert.ErrorIs(t, err, core.ErrProgressOutOfRange)

	updated, err := m.UpdateDocument(ctx, d.ID, func(d core.Document, now time.Time) (core.Document, error) {
		return d.WithReadingProgress(40, now)
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.ReadingProgress)

	m.ClearCache()
	got, err := m.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.ReadingProgress)
}

func TestVocabularyUniqueness(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	hello := addWord(t, m, clock, "Hello")

	dup := core.NewVocabulary("  hello ", clock.Tick())
	assert.ErrorIs(t, m.SaveVocabulary(ctx, dup), ErrDuplicateWord)

	// resaving the same record is not a duplicate
	require.NoError(t, m.SaveVocabulary(ctx, hello.WithNotes("greeting", clock.Tick())))

	found, err := m.FindVocabularyByWord(ctx, "HELLO")
	require.NoError(t, err)
	assert.Equal(t, hello.ID, found.ID)
	assert.Equal(t, "greeting", found.Notes)

	_, err = m.DeleteVocabulary(ctx, hello.ID)
	require.NoError(t, err)
	_, err = m.FindVocabularyByWord(ctx, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveVocabulary(ctx, dup), "inactive words do not block")

	active, err := m.GetAllVocabulary(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, dup.ID, active[0].ID)

	all, err := m.ListVocabulary(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReviewVocabulary(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	v := core.NewVocabulary("mot", clock.Tick())
	v, err := v.WithDifficulty(2, clock.Now())
	require.NoError(t, err)
	require.NoError(t, m.SaveVocabulary(ctx, v))

	now := clock.Tick()
	reviewed, err := m.ReviewVocabulary(ctx, v.ID, true, 5, core.ReviewQuiz)
	require.NoError(t, err)
	assert.Equal(t, 11, reviewed.MasteryLevel)
	assert.Equal(t, 1, reviewed.ReviewCount)
	assert.Equal(t, 1, reviewed.CorrectCount)
	require.NotNil(t, reviewed.NextReviewAt)
	assert.Equal(t, now.Add(12*time.Hour), *reviewed.NextReviewAt)
	require.Len(t, reviewed.ReviewHistory, 1)
	assert.Equal(t, core.ReviewQuiz, reviewed.ReviewHistory[0].ReviewType)

	m.ClearCache()
	stored, err := m.GetVocabulary(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, stored.MasteryLevel)
}

func TestGetVocabularyForReview(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)

	save := func(word string, mastery int, lastReview *time.Time, next *time.Time) core.Vocabulary {
		v := core.NewVocabulary(word, clock.Tick())
		v.MasteryLevel = mastery
		v.LastReviewAt = lastReview
		v.NextReviewAt = next
		require.NoError(t, m.SaveVocabulary(ctx, v))
		return v
	}
	at := func(d time.Duration) *time.Time {
		ts := clock.Now().Add(d)
		return &ts
	}

	future := save("future", 0, at(-time.Hour), at(48*time.Hour))
	high := save("high", 50, at(-72*time.Hour), at(-time.Hour))
	lowOld := save("lowOld", 10, at(-72*time.Hour), at(-time.Hour))
	lowNew := save("lowNew", 10, at(-24*time.Hour), at(-time.Hour))
	never := save("never", 10, nil, nil)
	edge := save("edge", 30, at(-time.Hour), at(time.Second))

	// the edge word becomes due exactly now
	clock.now = *edge.NextReviewAt

	queue, err := m.GetVocabularyForReview(ctx, 0)
	require.NoError(t, err)
	var words []string
	for _, v := range queue {
		words = append(words, v.Word)
	}
	assert.Equal(t, []string{never.Word, lowOld.Word, lowNew.Word, edge.Word, high.Word}, words)
	assert.NotContains(t, words, future.Word)

	queue, err = m.GetVocabularyForReview(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)

	_, err := m.CurrentUserID(ctx)
	assert.ErrorIs(t, err, ErrNoCurrentUser)

	u := core.DefaultUser(clock.Tick())
	require.NoError(t, m.SaveUser(ctx, u))
	require.NoError(t, m.SetCurrentUserID(ctx, u.ID))

	current, err := m.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, current.ID)

	updated, err := m.UpdateUser(ctx, u.ID, func(u core.User, now time.Time) (core.User, error) {
		return u.SetPreference("theme", "dark", now)
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Preferences.Theme)

	_, err = m.UpdateUser(ctx, u.ID, func(u core.User, now time.Time) (core.User, error) {
		return u.SetPreference("volume", "11", now)
	})
	assert.ErrorIs(t, err, core.ErrUnknownPreference)
}

func TestCacheServesUntilExpiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t, WithCacheTTL(250*time.Millisecond))
	d := addDocument(t, m, clock, "Cached", "first")

	// a write that bypasses the manager, as another process would
	changed := d.WithContent("second version", clock.Tick())
	require.NoError(t, m.Adapter().Save(ctx, storage.CollectionDocument, d.ID, changed))

	got, err := m.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)

	assert.Eventually(t, func() bool {
		got, err := m.GetDocument(ctx, d.ID)
		return err == nil && got.Content == "second version"
	}, 3*time.Second, 25*time.Millisecond)
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	d := addDocument(t, m, clock, "Cached", "first")

	changed := d.WithContent("second", clock.Tick())
	require.NoError(t, m.Adapter().Save(ctx, storage.CollectionDocument, d.ID, changed))

	m.ClearCache()
	got, err := m.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)
}

func TestClearAllData(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(t)
	d := addDocument(t, m, clock, "A", "a")
	addWord(t, m, clock, "w")

	n, err := m.ClearAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.GetDocument(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidOptions(t *testing.T) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	adapter, err := storage.NewAdapter(backend)
	require.NoError(t, err)

	_, err = New(adapter, WithCacheTTL(0))
	assert.Error(t, err)
	_, err = New(adapter, WithCacheSize(0))
	assert.Error(t, err)
}
