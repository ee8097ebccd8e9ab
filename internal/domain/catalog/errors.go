package catalog

import "errors"

// Sentinel errors for browse state updates.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page size not allowed")
)
