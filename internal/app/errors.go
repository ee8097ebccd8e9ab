package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidBrowse   = errors.New("invalid browse update")
)
