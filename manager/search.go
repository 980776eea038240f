package manager

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/wordweb/core"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 50

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// DocumentSearchOptions narrows and orders a document search. Zero values
// select the defaults.
type DocumentSearchOptions struct {
	// Fields searched for the query: title, content, tags, language.
	// Default title, content and tags.
	Fields []string

	// Language keeps only documents in this language when set.
	Language string

	// FolderPath keeps only documents filed at this path when set. The
	// root is the empty string.
	FolderPath *string

	// SortBy is createdAt, updatedAt, title, wordCount or readingProgress.
	// Default updatedAt.
	SortBy string

	// SortOrder is asc or desc. Default desc.
	SortOrder string

	// Limit caps the results. Default DefaultSearchLimit.
	Limit int
}

// VocabularySearchOptions narrows and orders a vocabulary search. Zero
// values select the defaults.
type VocabularySearchOptions struct {
	// Fields searched for the query: word, definition, translation, notes,
	// partOfSpeech, tags. Default word, definition and translation.
	Fields []string

	// Language keeps only words in this language when set.
	Language string

	// Difficulty keeps only words of this difficulty when above 0.
	Difficulty int

	// MinMastery keeps only words at or above this mastery level.
	MinMastery int

	// SortBy is word, masteryLevel, difficulty, createdAt, updatedAt or
	// nextReviewAt. Default createdAt.
	SortBy string

	// SortOrder is asc or desc. Default desc.
	SortOrder string

	// Limit caps the results. Default DefaultSearchLimit.
	Limit int
}

type (
	fieldFunc[T any] func(T) []string
	orderFunc[T any] func(a, b T) int
)

var documentFields = map[string]fieldFunc[core.Document]{
	"title":    func(d core.Document) []string { return []string{d.Title} },
	"content":  func(d core.Document) []string { return []string{d.Content} },
	"tags":     func(d core.Document) []string { return d.Tags },
	"language": func(d core.Document) []string { return []string{d.Language} },
}

var documentOrders = map[string]orderFunc[core.Document]{
	"createdAt":       func(a, b core.Document) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt":       func(a, b core.Document) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"title":           func(a, b core.Document) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	"wordCount":       func(a, b core.Document) int { return cmp.Compare(a.WordCount, b.WordCount) },
	"readingProgress": func(a, b core.Document) int { return cmp.Compare(a.ReadingProgress, b.ReadingProgress) },
}

var vocabularyFields = map[string]fieldFunc[core.Vocabulary]{
	"word":         func(v core.Vocabulary) []string { return []string{v.Word} },
	"definition":   func(v core.Vocabulary) []string { return []string{v.Definition} },
	"translation":  func(v core.Vocabulary) []string { return []string{v.Translation} },
	"notes":        func(v core.Vocabulary) []string { return []string{v.Notes} },
	"partOfSpeech": func(v core.Vocabulary) []string { return []string{v.PartOfSpeech} },
	"tags":         func(v core.Vocabulary) []string { return v.Tags },
}

var vocabularyOrders = map[string]orderFunc[core.Vocabulary]{
	"word":         func(a, b core.Vocabulary) int { return strings.Compare(a.NormalizedWord(), b.NormalizedWord()) },
	"masteryLevel": func(a, b core.Vocabulary) int { return cmp.Compare(a.MasteryLevel, b.MasteryLevel) },
	"difficulty":   func(a, b core.Vocabulary) int { return cmp.Compare(a.Difficulty, b.Difficulty) },
	"createdAt":    func(a, b core.Vocabulary) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt":    func(a, b core.Vocabulary) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"nextReviewAt": func(a, b core.Vocabulary) int { return compareTimes(a.NextReviewAt, b.NextReviewAt) },
}

// query is a resolved search: the fields to match and how to order.
type query[T any] struct {
	text   string
	fields []fieldFunc[T]
	order  orderFunc[T]
	limit  int
}

func newQuery[T any](text string, names, defaults []string, fields map[string]fieldFunc[T],
	sortBy, defaultSort, sortOrder string, orders map[string]orderFunc[T], limit int,
) (*query[T], error) {
	if len(names) == 0 {
		names = defaults
	}
	q := &query[T]{text: strings.ToLower(text), limit: limit}
	for _, name := range names {
		f, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: search field %q", ErrUnknownField, name)
		}
		q.fields = append(q.fields, f)
	}

	if sortBy == "" {
		sortBy = defaultSort
	}
	order, ok := orders[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: sort field %q", ErrUnknownField, sortBy)
	}
	switch sortOrder {
	case SortAsc:
		q.order = order
	case SortDesc, "":
		q.order = func(a, b T) int { return order(b, a) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortOrder, sortOrder)
	}

	if q.limit < 1 {
		q.limit = DefaultSearchLimit
	}
	return q, nil
}

// matches reports whether any searched field contains the query text,
// ignoring case. An empty query matches everything.
func (q *query[T]) matches(v T) bool {
	for _, field := range q.fields {
		for _, s := range field(v) {
			if strings.Contains(strings.ToLower(s), q.text) {
				return true
			}
		}
	}
	return false
}

func (q *query[T]) run(items []T, keep func(T) bool) []T {
	out := slices.DeleteFunc(items, func(v T) bool { return !keep(v) || !q.matches(v) })
	slices.SortStableFunc(out, q.order)
	if len(out) > q.limit {
		out = out[:q.limit]
	}
	return out
}

// SearchDocuments returns active documents whose searched fields contain
// text, ignoring case.
func (m *Manager) SearchDocuments(ctx context.Context, text string, opts DocumentSearchOptions) ([]core.Document, error) {
	q, err := newQuery(text, opts.Fields, []string{"title", "content", "tags"}, documentFields,
		opts.SortBy, "updatedAt", opts.SortOrder, documentOrders, opts.Limit)
	if err != nil {
		return nil, err
	}
	docs, err := m.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return q.run(docs, func(d core.Document) bool {
		if opts.Language != "" && d.Language != opts.Language {
			return false
		}
		return opts.FolderPath == nil || d.FolderPath == *opts.FolderPath
	}), nil
}

// SearchVocabulary returns active words whose searched fields contain text,
// ignoring case.
func (m *Manager) SearchVocabulary(ctx context.Context, text string, opts VocabularySearchOptions) ([]core.Vocabulary, error) {
	q, err := newQuery(text, opts.Fields, []string{"word", "definition", "translation"}, vocabularyFields,
		opts.SortBy, "createdAt", opts.SortOrder, vocabularyOrders, opts.Limit)
	if err != nil {
		return nil, err
	}
	all, err := m.GetAllVocabulary(ctx)
	if err != nil {
		return nil, err
	}
	return q.run(all, func(v core.Vocabulary) bool {
		if opts.Language != "" && v.Language != opts.Language {
			return false
		}
		if opts.Difficulty > 0 && v.Difficulty != opts.Difficulty {
			return false
		}
		return v.MasteryLevel >= opts.MinMastery
	}), nil
}
