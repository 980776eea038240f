package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded indicates the store refused a write for lack of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrCorruptRecord indicates a stored value that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrUnsupportedEncoding indicates an envelope flag this adapter cannot reverse.
	ErrUnsupportedEncoding = errors.New("unsupported record encoding")

	// ErrImportFormat indicates an export payload missing required fields.
	ErrImportFormat = errors.New("invalid import format")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)
