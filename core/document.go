package core

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the lifecycle state of a document. Deleted is a soft state; the
// record stays in the store.
type Status int

const (
	StatusActive Status = iota
	StatusArchived
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusArchived:
		return "archived"
	case StatusDeleted:
		return "deleted"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus converts the stored form of a status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active", "":
		return StatusActive, nil
	case "archived":
		return StatusArchived, nil
	case "deleted":
		return StatusDeleted, nil
	}
	return StatusActive, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
}

func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Document difficulty levels.
const (
	DocumentEasy   = "easy"
	DocumentMedium = "medium"
	DocumentHard   = "hard"
)

// WordsPerMinute is the reading speed used to estimate reading time.
const WordsPerMinute = 200

// DocumentMetadata holds derived reading figures.
type DocumentMetadata struct {
	ReadingSpeed         int `json:"readingSpeed"`
	EstimatedReadingTime int `json:"estimatedReadingTime"`
}

// ContextWord is a word captured while reading a document.
type ContextWord struct {
	ID           string     `json:"id"`
	Word         string     `json:"word"`
	Definition   string     `json:"definition"`
	Context      string     `json:"context"`
	AddedAt      time.Time  `json:"addedAt"`
	ReviewCount  int        `json:"reviewCount"`
	LastReviewAt *time.Time `json:"lastReviewAt"`
	Difficulty   int        `json:"difficulty"`
}

// Note is a reader annotation anchored at a position in the content.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Position  *int      `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Bookmark marks a position in the content.
type Bookmark struct {
	ID        string    `json:"id"`
	Position  int       `json:"position"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is an imported text with its reading state.
type Document struct {
	Record
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	Language        string           `json:"language"`
	Tags            []string         `json:"tags"`
	WordCount       int              `json:"wordCount"`
	CharacterCount  int              `json:"characterCount"`
	ReadingProgress int              `json:"readingProgress"`
	LastReadAt      *time.Time       `json:"lastReadAt"`
	ReadingTime     int              `json:"readingTime"`
	Difficulty      string           `json:"difficulty"`
	Status          Status           `json:"status"`
	FolderPath      string           `json:"folderPath"`
	Metadata        DocumentMetadata `json:"metadata"`
	Vocabulary      []ContextWord    `json:"vocabulary"`
	Notes           []Note           `json:"notes"`
	Bookmarks       []Bookmark       `json:"bookmarks"`
}

// UnmarshalJSON applies defaults for fields absent in older records.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	p := plain{Language: "English", Difficulty: DocumentMedium}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Document(p)
	return nil
}

// NewDocument creates an active document at the root folder.
func NewDocument(title, content string, now time.Time) Document {
	d := Document{
		Record:     NewRecord(now),
		Title:      strings.TrimSpace(title),
		Content:    content,
		Language:   "English",
		Tags:       []string{},
		Difficulty: DocumentMedium,
		Status:     StatusActive,
		Vocabulary: []ContextWord{},
		Notes:      []Note{},
		Bookmarks:  []Bookmark{},
	}
	d.recount()
	return d
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// EstimateReadingTime returns the minutes needed to read words words.
func EstimateReadingTime(words int) int {
	return int(math.Ceil(float64(words) / WordsPerMinute))
}

func (d *Document) recount() {
	d.WordCount = CountWords(d.Content)
	d.CharacterCount = utf8.RuneCountInString(d.Content)
	d.Metadata.EstimatedReadingTime = EstimateReadingTime(d.WordCount)
}

func (d Document) clone() Document {
	d.Tags = slices.Clone(d.Tags)
	d.LastReadAt = cloneTime(d.LastReadAt)
	d.Vocabulary = slices.Clone(d.Vocabulary)
	for i := range d.Vocabulary {
		d.Vocabulary[i].LastReviewAt = cloneTime(d.Vocabulary[i].LastReviewAt)
	}
	d.Notes = slices.Clone(d.Notes)
	for i := range d.Notes {
		if p := d.Notes[i].Position; p != nil {
			v := *p
			d.Notes[i].Position = &v
		}
	}
	d.Bookmarks = slices.Clone(d.Bookmarks)
	return d
}

func (d Document) stamp(now time.Time) Document {
	d.Record = d.stamped(now)
	return d
}

// WithContent replaces the content and recomputes derived counts.
func (d Document) WithContent(content string, now time.Time) Document {
	d = d.clone()
	d.Content = content
	d.recount()
	return d.stamp(now)
}

// WithTitle renames the document. Blank titles are rejected.
func (d Document) WithTitle(title string, now time.Time) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return d, ErrEmptyTitle
	}
	d = d.clone()
	d.Title = title
	return d.stamp(now), nil
}

// WithLanguage sets the language tag.
func (d Document) WithLanguage(language string, now time.Time) Document {
	d = d.clone()
	d.Language = language
	return d.stamp(now)
}

// AddTag adds a trimmed tag if it is new.
func (d Document) AddTag(tag string, now time.Time) Document {
	tags, changed := addUnique(d.Tags, strings.TrimSpace(tag))
	if !changed {
		return d
	}
	d = d.clone()
	d.Tags = tags
	return d.stamp(now)
}

// RemoveTag removes tag if present.
func (d Document) RemoveTag(tag string, now time.Time) Document {
	tags, changed := removeValue(d.Tags, tag)
	if !changed {
		return d
	}
	d = d.clone()
	d.Tags = tags
	return d.stamp(now)
}

// WithReadingProgress sets progress (0-100) and marks the document read now.
func (d Document) WithReadingProgress(progress int, now time.Time) (Document, error) {
	if progress < 0 || progress > 100 {
		return d, ErrProgressOutOfRange
	}
	d = d.clone()
	d.ReadingProgress = progress
	d.LastReadAt = timePtr(now)
	return d.stamp(now), nil
}

// AddReadingTime adds minutes of reading. Non-positive values are ignored.
func (d Document) AddReadingTime(minutes int, now time.Time) Document {
	if minutes <= 0 {
		return d
	}
	d = d.clone()
	d.ReadingTime += minutes
	d.LastReadAt = timePtr(now)
	return d.stamp(now)
}

// AddWord records a word seen in this document. A word already present
// (case-insensitively) is replaced.
func (d Document) AddWord(word, definition, context string, now time.Time) Document {
	entry := ContextWord{
		ID:         NewID(),
		Word:       strings.TrimSpace(word),
		Definition: strings.TrimSpace(definition),
		Context:    strings.TrimSpace(context),
		AddedAt:    now.UTC(),
		Difficulty: 1,
	}
	d = d.clone()
	i := slices.IndexFunc(d.Vocabulary, func(w ContextWord) bool {
		return strings.EqualFold(w.Word, entry.Word)
	})
	if i >= 0 {
		d.Vocabulary[i] = entry
	} else {
		d.Vocabulary = append(d.Vocabulary, entry)
	}
	return d.stamp(now)
}

// RemoveWord removes the in-context word with the given id.
func (d Document) RemoveWord(id string, now time.Time) Document {
	i := slices.IndexFunc(d.Vocabulary, func(w ContextWord) bool { return w.ID == id })
	if i < 0 {
		return d
	}
	d = d.clone()
	d.Vocabulary = slices.Delete(d.Vocabulary, i, i+1)
	return d.stamp(now)
}

// AddNote appends a note and returns its id.
func (d Document) AddNote(content string, position *int, now time.Time) (Document, string) {
	note := Note{
		ID:        NewID(),
		Content:   strings.TrimSpace(content),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if position != nil {
		p := *position
		note.Position = &p
	}
	d = d.clone()
	d.Notes = append(d.Notes, note)
	return d.stamp(now), note.ID
}

// UpdateNote replaces the content of note id.
func (d Document) UpdateNote(id, content string, now time.Time) (Document, error) {
	i := slices.IndexFunc(d.Notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return d, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	d = d.clone()
	d.Notes[i].Content = strings.TrimSpace(content)
	d.Notes[i].UpdatedAt = now.UTC()
	return d.stamp(now), nil
}

// DeleteNote removes note id if present.
func (d Document) DeleteNote(id string, now time.Time) Document {
	i := slices.IndexFunc(d.Notes, func(n Note) bool { return n.ID == id })
	if i < 0 {
		return d
	}
	d = d.clone()
	d.Notes = slices.Delete(d.Notes, i, i+1)
	return d.stamp(now)
}

// AddBookmark appends a bookmark and returns its id. A blank title becomes
// "Bookmark N".
func (d Document) AddBookmark(position int, title string, now time.Time) (Document, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Bookmark %d", len(d.Bookmarks)+1)
	}
	b := Bookmark{ID: NewID(), Position: position, Title: title, CreatedAt: now.UTC()}
	d = d.clone()
	d.Bookmarks = append(d.Bookmarks, b)
	return d.stamp(now), b.ID
}

// DeleteBookmark removes bookmark id if present.
func (d Document) DeleteBookmark(id string, now time.Time) Document {
	i := slices.IndexFunc(d.Bookmarks, func(b Bookmark) bool { return b.ID == id })
	if i < 0 {
		return d
	}
	d = d.clone()
	d.Bookmarks = slices.Delete(d.Bookmarks, i, i+1)
	return d.stamp(now)
}

// WithStatus moves the document to status.
func (d Document) WithStatus(status Status, now time.Time) Document {
	d = d.clone()
	d.Status = status
	return d.stamp(now)
}

// Archive hides the document from the active library.
func (d Document) Archive(now time.Time) Document { return d.WithStatus(StatusArchived, now) }

// Restore returns the document to the active library.
func (d Document) Restore(now time.Time) Document { return d.WithStatus(StatusActive, now) }

// MarkDeleted soft-deletes the document.
func (d Document) MarkDeleted(now time.Time) Document { return d.WithStatus(StatusDeleted, now) }

// WithFolderPath files the document under path ("" is the root).
func (d Document) WithFolderPath(path string, now time.Time) Document {
	d = d.clone()
	d.FolderPath = path
	return d.stamp(now)
}

// DocumentSummary is the listing view of a document.
type DocumentSummary struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Language        string     `json:"language"`
	WordCount       int        `json:"wordCount"`
	ReadingProgress int        `json:"readingProgress"`
	Tags            []string   `json:"tags"`
	LastReadAt      *time.Time `json:"lastReadAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	Status          Status     `json:"status"`
	FolderPath      string     `json:"folderPath"`
}

// Summary returns the listing view.
func (d Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:              d.ID,
		Title:           d.Title,
		Language:        d.Language,
		WordCount:       d.WordCount,
		ReadingProgress: d.ReadingProgress,
		Tags:            slices.Clone(d.Tags),
		LastReadAt:      cloneTime(d.LastReadAt),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Status:          d.Status,
		FolderPath:      d.FolderPath,
	}
}

// LearningStats counts the learning artifacts attached to a document.
type LearningStats struct {
	VocabularyCount int    `json:"vocabularyCount"`
	NotesCount      int    `json:"notesCount"`
	BookmarksCount  int    `json:"bookmarksCount"`
	ReadingTime     int    `json:"readingTime"`
	ReadingProgress int    `json:"readingProgress"`
	Difficulty      string `json:"difficulty"`
}

func (d Document) LearningStats() LearningStats {
	return LearningStats{
		VocabularyCount: len(d.Vocabulary),
		NotesCount:      len(d.Notes),
		BookmarksCount:  len(d.Bookmarks),
		ReadingTime:     d.ReadingTime,
		ReadingProgress: d.ReadingProgress,
		Difficulty:      d.Difficulty,
	}
}
