package manager

import (
	"errors"

	"github.com/poiesic/wordweb/storage"
)

var (
	// ErrAdapterRequired is returned when no storage adapter is provided.
	ErrAdapterRequired = errors.New("storage adapter required")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = storage.ErrNotFound

	// ErrDuplicateWord is returned when another active vocabulary record
	// already holds the same word.
	ErrDuplicateWord = errors.New("word already in vocabulary")

	// ErrUnknownField is returned for search or sort fields that do not exist.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidSortOrder is returned for sort orders other than asc and desc.
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")

	// ErrNoCurrentUser is returned when no current user has been set.
	ErrNoCurrentUser = errors.New("no current user")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
