package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrMissingSession = errors.New("missing X-Session-ID header")
	ErrInvalidID      = errors.New("recipe id must be a positive integer")
)
