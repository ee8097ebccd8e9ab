// Package storage is the durable key-value layer behind ratings and favorites.
package storage

import "context"

// Keys of the persisted values.
const (
	// KeyUserRatings is reserved for per-user ratings and never written.
	KeyUserRatings = "ra.userRatings"
	KeyRatingStats = "ra.ratingStats"
	KeyFavorites   = "ra.favorites"
)

// Store is a durable key-value store of raw bytes.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
