package ingest

import "errors"

var (
	// ErrStoreRequired is returned when no DocumentSaver is provided.
	ErrStoreRequired = errors.New("document store required")

	// ErrEmptyContent is returned for a source with no text.
	ErrEmptyContent = errors.New("source has no content")
)
