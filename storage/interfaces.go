package storage

import "context"

// KV is a string-keyed byte store. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A store that is out of space returns an
	// error wrapping ErrQuotaExceeded.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan calls fn for every key starting with prefix, in key order. The
	// value slice is only valid during the call.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error
}
