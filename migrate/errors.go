package migrate

import "errors"

var (
	// ErrInvalidVersion indicates a version string that is not dotted numbers.
	ErrInvalidVersion = errors.New("invalid schema version")

	// ErrDuplicateStep indicates two steps registered for the same version.
	ErrDuplicateStep = errors.New("migration step already registered")

	// ErrMigrationFailed indicates an upgrade step or its validation failed.
	// The store has been restored to its state before the call.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrRollbackFailed indicates a downgrade step failed. The store has been
	// restored to its state before the call.
	ErrRollbackFailed = errors.New("rollback failed")

	// ErrRestoreFailed indicates the pre-migration snapshot could not be
	// restored after a failure.
	ErrRestoreFailed = errors.New("snapshot restore failed")

	// ErrSnapshotNotFound indicates an unknown snapshot id.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotCorrupt indicates a snapshot whose checksum does not match.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")
)
