package service

import (
	"context"
	"fmt"

	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/internal/domain/recipe"
	"github.com/okian/recipebox/internal/domain/types"
	"github.com/okian/recipebox/pkg/logger"
	"github.com/okian/recipebox/pkg/metrics"
)

// List runs the pipeline for an explicit filter state, without a session.
func (s *Service) List(ctx context.Context, st catalog.FilterState) (types.Page, error) {
	if err := s.ready(); err != nil {
		return types.Page{}, err
	}
	res := catalog.Apply(s.recipes, st, s.ratings.AverageFunc())
	return s.page(ctx, res, st.Sort), nil
}

// Recipe returns the detail view. sessionID may be empty; it only decides
// the voted flag.
func (s *Service) Recipe(ctx context.Context, id int, sessionID string) (types.RecipeDetail, error) {
	if err := s.ready(); err != nil {
		return types.RecipeDetail{}, err
	}
	r, err := s.find(id)
	if err != nil {
		return types.RecipeDetail{}, err
	}
	st := s.ratings.Stats(ctx, id)
	return types.RecipeDetail{
		Recipe:        *r,
		AverageRating: st.AverageRating,
		RatingCount:   st.RatingCount,
		Favorite:      s.favorites.Contains(ctx, id),
		Voted:         sessionID != "" && s.gate.HasVoted(ctx, sessionID, id),
	}, nil
}

// Rating returns the effective stats of a recipe.
func (s *Service) Rating(ctx context.Context, id int) (rating.Stats, error) {
	if err := s.ready(); err != nil {
		return rating.Stats{}, err
	}
	if _, err := s.find(id); err != nil {
		return rating.Stats{}, err
	}
	return s.ratings.Stats(ctx, id), nil
}

// Categories returns All followed by the dataset categories.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return recipe.Categories(s.recipes), nil
}

// Difficulties returns All followed by the dataset difficulties.
func (s *Service) Difficulties(_ context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return recipe.Difficulties(s.recipes), nil
}

// Favorites lists the favorite recipes in the order they were added,
// narrowed by the title search query.
func (s *Service) Favorites(ctx context.Context, query string) ([]types.RecipeCard, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ids := s.favorites.List(ctx)
	rs := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		// Ids that left the dataset are skipped, not dropped from storage.
		if r, ok := recipe.Find(s.recipes, id); ok {
			rs = append(rs, *r)
		}
	}
	return s.cards(ctx, catalog.Search(rs, query)), nil
}

// Vote submits a rating for a recipe on behalf of a session. A rejected vote
// is not an error: accepted is false and stats are the unchanged aggregate.
func (s *Service) Vote(ctx context.Context, sessionID string, id int, value float64) (bool, rating.Stats, error) {
	if err := s.ready(); err != nil {
		return false, rating.Stats{}, err
	}
	if _, err := s.find(id); err != nil {
		return false, rating.Stats{}, err
	}
	if _, ok := s.sessions.Load(sessionID); !ok {
		return false, rating.Stats{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	stats, accepted := s.ratings.SubmitStats(ctx, sessionID, id, value)
	metrics.UpdateVoteGateSize(s.gate.Size())
	s.logger.Debug(ctx, "vote submitted",
		logger.String("session", sessionID),
		logger.Int("recipe", id),
		logger.Float64("value", value),
		logger.Bool("accepted", accepted),
	)
	return accepted, stats, nil
}

// ToggleFavorite flips the favorite flag of a recipe and reports whether it
// is now a favorite.
func (s *Service) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if _, err := s.find(id); err != nil {
		return false, err
	}
	added := s.favorites.Toggle(ctx, id)
	s.logger.Debug(ctx, "favorite toggled", logger.Int("recipe", id), logger.Bool("added", added))
	return added, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"dataDir":      s.dataDir,
		"itemsPerPage": s.perPage,
		"maxSessions":  s.maxSessions,
	}

	if s.started {
		stats["recipes"] = len(s.recipes)
		stats["favorites"] = s.favorites.Len()
		stats["sessions"] = s.gate.Sessions()
		stats["voteFlags"] = s.gate.Size()
		stats["ratedRecipes"] = len(s.ratings.Snapshot())

		metrics.UpdateSessionsActive(s.gate.Sessions())
		metrics.UpdateVoteGateSize(s.gate.Size())
		metrics.UpdateFavoritesTotal(s.favorites.Len())
	}

	return stats
}
