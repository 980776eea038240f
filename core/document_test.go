package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentCounts(t *testing.T) {
	d := NewDocument("T", "a b c", testNow)

	assert.Equal(t, 3, d.WordCount)
	assert.Equal(t, 5, d.CharacterCount)
	assert.Equal(t, StatusActive, d.Status)
	assert.Equal(t, 1, d.Metadata.EstimatedReadingTime)

	d = d.WithContent("  héllo\n\twörld  ", testNow)
	assert.Equal(t, 2, d.WordCount)
	assert.Equal(t, 16, d.CharacterCount)

	d = d.WithContent("", testNow)
	assert.Equal(t, 0, d.WordCount)
	assert.Equal(t, 0, d.Metadata.EstimatedReadingTime)
}

func TestDocumentMutationsStamp(t *testing.T) {
	later := testNow.Add(time.Minute)
	d := NewDocument("T", "text", testNow)

	tagged := d.AddTag(" go ", later)
	assert.Equal(t, []string{"go"}, tagged.Tags)
	assert.Equal(t, 2, tagged.Version)
	assert.Equal(t, later, tagged.UpdatedAt)
	assert.Empty(t, d.Tags, "original unchanged")
	assert.Equal(t, 1, d.Version)

	same := tagged.AddTag("go", later.Add(time.Minute))
	assert.Equal(t, tagged, same, "duplicate tag is a no-op")

	removed := tagged.RemoveTag("go", later)
	assert.Empty(t, removed.Tags)
	assert.Equal(t, []string{"go"}, tagged.Tags)
}

func TestDocumentReadingProgress(t *testing.T) {
	d := NewDocument("T", "text", testNow)

	d, err := d.WithReadingProgress(55, testNow)
	require.NoError(t, err)
	assert.Equal(t, 55, d.ReadingProgress)
	require.NotNil(t, d.LastReadAt)

	_, err = d.WithReadingProgress(101, testNow)
	assert.ErrorIs(t, err, ErrProgressOutOfRange)
	_, err = d.WithReadingProgress(-1, testNow)
	assert.ErrorIs(t, err, ErrProgressOutOfRange)

	d = d.AddReadingTime(0, testNow)
	assert.Equal(t, 0, d.ReadingTime)
	d = d.AddReadingTime(15, testNow)
	assert.Equal(t, 15, d.ReadingTime)
}

func TestDocumentChildren(t *testing.T) {
	d := NewDocument("T", "text", testNow)

	t.Run("words merge case-insensitively", func(t *testing.T) {
		x := d.AddWord("Apple", "fruit", "an apple a day", testNow)
		x = x.AddWord("apple", "company", "", testNow)
		require.Len(t, x.Vocabulary, 1)
		assert.Equal(t, "apple", x.Vocabulary[0].Word)
		assert.Equal(t, "company", x.Vocabulary[0].Definition)

		x = x.RemoveWord(x.Vocabulary[0].ID, testNow)
		assert.Empty(t, x.Vocabulary)
	})

	t.Run("notes", func(t *testing.T) {
		pos := 3
		x, id := d.AddNote(" remember ", &pos, testNow)
		require.Len(t, x.Notes, 1)
		assert.Equal(t, "remember", x.Notes[0].Content)
		assert.Equal(t, 3, *x.Notes[0].Position)

		later := testNow.Add(time.Hour)
		x, err := x.UpdateNote(id, "revised", later)
		require.NoError(t, err)
		assert.Equal(t, "revised", x.Notes[0].Content)
		assert.Equal(t, later, x.Notes[0].UpdatedAt)

		_, err = x.UpdateNote("missing", "x", later)
		assert.ErrorIs(t, err, ErrNotFound)

		x = x.DeleteNote(id, later)
		assert.Empty(t, x.Notes)
	})

	t.Run("bookmarks get default titles", func(t *testing.T) {
		x, _ := d.AddBookmark(10, "", testNow)
		x, id := x.AddBookmark(20, "  ", testNow)
		x, _ = x.AddBookmark(30, "Chapter 2", testNow)
		require.Len(t, x.Bookmarks, 3)
		assert.Equal(t, "Bookmark 1", x.Bookmarks[0].Title)
		assert.Equal(t, "Bookmark 2", x.Bookmarks[1].Title)
		assert.Equal(t, "Chapter 2", x.Bookmarks[2].Title)

		x = x.DeleteBookmark(id, testNow)
		assert.Len(t, x.Bookmarks, 2)
	})
}

func TestDocumentStatus(t *testing.T) {
	d := NewDocument("T", "text", testNow)

	assert.Equal(t, StatusArchived, d.Archive(testNow).Status)
	assert.Equal(t, StatusDeleted, d.MarkDeleted(testNow).Status)
	assert.Equal(t, StatusActive, d.MarkDeleted(testNow).Restore(testNow).Status)

	for _, s := range []Status{StatusActive, StatusArchived, StatusDeleted} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		parsed, err := ParseStatus(string(text))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := Status(7).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDocumentTitleAndFolder(t *testing.T) {
	d := NewDocument("T", "text", testNow)

	_, err := d.WithTitle("  ", testNow)
	assert.ErrorIs(t, err, ErrEmptyTitle)

	renamed, err := d.WithTitle(" New ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Title)

	filed := d.WithFolderPath("books/novels", testNow)
	assert.Equal(t, "books/novels", filed.FolderPath)
	assert.Equal(t, "books/novels", filed.Summary().FolderPath)
	assert.Equal(t, 0, filed.LearningStats().NotesCount)
}
