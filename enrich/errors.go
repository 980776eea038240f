package enrich

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrManagerRequired is returned when an Enricher is built without a manager
	ErrManagerRequired = errors.New("enrich: manager is required")

	// ErrDefinerRequired is returned when an Enricher is built without a definer
	ErrDefinerRequired = errors.New("enrich: definer is required")
)
