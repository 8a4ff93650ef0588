package store

import "errors"

var (
	// ErrConflict indicates the destination database already exists and the
	// policy does not say what to do with it.
	ErrConflict = errors.New("store already exists")

	// ErrLocked indicates another process holds the store's writer lock.
	ErrLocked = errors.New("store locked by another process")

	// ErrMissing indicates a store that was expected to exist does not.
	ErrMissing = errors.New("store not found")

	// ErrSchemaMismatch indicates the database is not a catalog store of the
	// expected schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")

	// ErrReadOnly indicates a write was attempted on a store opened with
	// OpenRead.
	ErrReadOnly = errors.New("store opened read-only")
)
