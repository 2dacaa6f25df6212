package storage

import "errors"

// Common storage errors
var (
	// ErrItemNotFound indicates that no local copy of the item exists
	ErrItemNotFound = errors.New("item not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSchemaVersion indicates that the database was written by an incompatible version
	ErrSchemaVersion = errors.New("unsupported storage schema version")
)
