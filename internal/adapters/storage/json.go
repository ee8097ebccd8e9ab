package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/pkg/logger"
	"github.com/okian/recipebox/pkg/metrics"
)

// GetJSON decodes the value under key into dst.
// It returns ErrNotFound for a missing key and ErrCorrupt for an undecodable value.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// loadOr reads key into a fresh T. A missing or corrupt value yields fallback
// and ok, since nothing in it can be recovered. A store that cannot be read
// yields fallback with ok false. Failures other than a missing key are logged
// and counted.
func loadOr[T any](ctx context.Context, s Store, log logger.Logger, key string, fallback T) (T, bool) {
	var v T
	err := GetJSON(ctx, s, key, &v)
	switch {
	case err == nil:
		return v, true
	case errors.Is(err, ErrNotFound):
		return fallback, true
	case errors.Is(err, ErrCorrupt):
		metrics.RecordStorageError("read")
		log.Warn(ctx, "stored value is corrupt, using fallback", logger.String("key", key), logger.Error(err))
		return fallback, true
	default:
		metrics.RecordStorageError("read")
		log.Warn(ctx, "storage read failed, using fallback", logger.String("key", key), logger.Error(err))
		return fallback, false
	}
}

// save writes v under key; a failure is logged and counted, never returned.
func save(ctx context.Context, s Store, log logger.Logger, key string, v any) {
	if err := SetJSON(ctx, s, key, v); err != nil {
		metrics.RecordStorageError("write")
		log.Warn(ctx, "storage write failed, keeping in-memory state", logger.String("key", key), logger.Error(err))
	}
}

func newRepoConfig(opts []RepoOption) repoConfig {
	c := repoConfig{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// RatingRepository persists the rating aggregate map under KeyRatingStats.
type RatingRepository struct {
	store  Store
	logger logger.Logger
}

// NewRatingRepository returns a repository over s.
func NewRatingRepository(s Store, opts ...RepoOption) *RatingRepository {
	c := newRepoConfig(opts)
	return &RatingRepository{store: s, logger: c.logger}
}

// Load returns the stored map, or an empty map when nothing is stored.
// ok is false when the store could not be read.
func (r *RatingRepository) Load(ctx context.Context) (map[int]rating.Stats, bool) {
	m, ok := loadOr[map[int]rating.Stats](ctx, r.store, r.logger, KeyRatingStats, nil)
	if m == nil {
		m = map[int]rating.Stats{}
	}
	return m, ok
}

// Save writes the full map, best-effort.
func (r *RatingRepository) Save(ctx context.Context, stats map[int]rating.Stats) {
	save(ctx, r.store, r.logger, KeyRatingStats, stats)
}

// FavoritesRepository persists the favorite id list under KeyFavorites.
type FavoritesRepository struct {
	store  Store
	logger logger.Logger
}

// NewFavoritesRepository returns a repository over s.
func NewFavoritesRepository(s Store, opts ...RepoOption) *FavoritesRepository {
	c := newRepoConfig(opts)
	return &FavoritesRepository{store: s, logger: c.logger}
}

// Load returns the stored ids, or an empty list.
func (r *FavoritesRepository) Load(ctx context.Context) []int {
	ids, _ := loadOr[[]int](ctx, r.store, r.logger, KeyFavorites, nil)
	if ids == nil {
		ids = []int{}
	}
	return ids
}

// Save writes the id list, best-effort.
func (r *FavoritesRepository) Save(ctx context.Context, ids []int) {
	save(ctx, r.store, r.logger, KeyFavorites, ids)
}
