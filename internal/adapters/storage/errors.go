package storage

import "errors"

// Sentinel errors for storage operations.
var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store closed")
	ErrCorrupt  = errors.New("stored value is corrupt")
	// ErrUnavailable is returned by a MemoryStore told to fail.
	ErrUnavailable = errors.New("storage unavailable")
)
