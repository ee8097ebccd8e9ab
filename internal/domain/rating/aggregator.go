package rating

import (
	"context"
	"maps"
	"sync"

	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/recipe"
	"github.com/okian/recipebox/pkg/logger"
	"github.com/okian/recipebox/pkg/metrics"
)

// Repository is the durable home of the aggregate map. Load returns an empty
// map when nothing usable is stored, and ok false when the store could not be
// read at all. Save is best-effort.
type Repository interface {
	Load(ctx context.Context) (map[int]Stats, bool)
	Save(ctx context.Context, stats map[int]Stats)
}

// Gate remembers which recipes a session has already rated.
type Gate interface {
	HasVoted(ctx context.Context, sessionID string, recipeID int) bool
	Record(ctx context.Context, sessionID string, recipeID int)
}

// Aggregator applies votes to the durable aggregate and serves the effective
// stats. All mutations go through one mutex.
type Aggregator struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	cache   map[int]Stats
	repo    Repository
	gate    Gate
	logger  logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for rejection and seeding messages.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator returns an aggregator over recipes. Call Init before serving.
func NewAggregator(recipes []recipe.Recipe, repo Repository, gate Gate, opts ...Option) *Aggregator {
	a := &Aggregator{
		recipes: recipes,
		cache:   map[int]Stats{},
		repo:    repo,
		gate:    gate,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init loads the durable map into the cache. An empty map is seeded from the
// dataset baselines and written back. An unreadable store seeds the cache
// only, so whatever it holds is not overwritten.
func (a *Aggregator) Init(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	stored, ok := a.repo.Load(ctx)
	if !ok {
		a.cache = SeedFromDataset(a.recipes)
		a.logger.Warn(ctx, "rating store unreadable, serving dataset baselines")
		return
	}
	if len(stored) == 0 {
		stored = SeedFromDataset(a.recipes)
		a.repo.Save(ctx, stored)
		a.logger.Info(ctx, "seeded rating aggregates from dataset", logger.Int("recipes", len(stored)))
	}
	a.cache = stored
}

// Submit records one vote. It returns false when the value is invalid or the
// session already rated the recipe; the aggregate is then untouched.
func (a *Aggregator) Submit(ctx context.Context, sessionID string, recipeID int, value float64) bool {
	_, err := a.submit(ctx, sessionID, recipeID, value)
	return err == nil
}

// SubmitStats is Submit returning the effective stats after the call.
func (a *Aggregator) SubmitStats(ctx context.Context, sessionID string, recipeID int, value float64) (Stats, bool) {
	s, err := a.submit(ctx, sessionID, recipeID, value)
	if err != nil {
		return a.Stats(ctx, recipeID), false
	}
	return s, true
}

func (a *Aggregator) submit(ctx context.Context, sessionID string, recipeID int, value float64) (Stats, error) {
	if err := ValidateVote(value); err != nil {
		a.reject(ctx, sessionID, recipeID, "invalid", err)
		return Stats{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.gate.HasVoted(ctx, sessionID, recipeID) {
		a.reject(ctx, sessionID, recipeID, "already_voted", ErrAlreadyVoted)
		return Stats{}, ErrAlreadyVoted
	}

	// An accepted vote is applied in full even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	stored, ok := a.repo.Load(ctx)
	if ok {
		keepNewer(stored, a.cache)
	} else {
		stored = maps.Clone(a.cache)
	}
	r, _ := recipe.Find(a.recipes, recipeID)
	next := Resolve(stored, r, recipeID).Add(value)
	stored[recipeID] = next
	if ok {
		a.repo.Save(ctx, stored)
	} else {
		a.logger.Warn(ctx, "rating store unreadable, vote kept in memory", logger.Int("recipe", recipeID))
	}

	maps.Copy(a.cache, stored)
	a.gate.Record(ctx, sessionID, recipeID)
	metrics.RecordVoteAccepted()
	return next, nil
}

// keepNewer copies into stored every cached aggregate that counts more votes,
// so a stale read never lowers a count.
func keepNewer(stored, cache map[int]Stats) {
	for id, c := range cache {
		if s, ok := stored[id]; !ok || c.RatingCount > s.RatingCount {
			stored[id] = c
		}
	}
}

func (a *Aggregator) reject(ctx context.Context, sessionID string, recipeID int, reason string, err error) {
	metrics.RecordVoteRejected(reason)
	a.logger.Debug(ctx, "vote rejected",
		logger.String("session", sessionID),
		logger.Int("recipe", recipeID),
		logger.String("reason", reason),
		logger.Error(err))
}

// Stats returns the effective stats for recipeID.
func (a *Aggregator) Stats(_ context.Context, recipeID int) Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, _ := recipe.Find(a.recipes, recipeID)
	return Resolve(a.cache, r, recipeID)
}

// Snapshot returns a copy of the cached aggregate map.
func (a *Aggregator) Snapshot() map[int]Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.cache)
}

// AverageFunc returns the effective average lookup used by the rating sort.
// It reads a snapshot, so a sort never observes a half-applied vote.
func (a *Aggregator) AverageFunc() catalog.AverageFunc {
	snap := a.Snapshot()
	byID := make(map[int]*recipe.Recipe, len(a.recipes))
	for i := range a.recipes {
		byID[a.recipes[i].ID] = &a.recipes[i]
	}
	return func(id int) float64 {
		return Resolve(snap, byID[id], id).AverageRating
	}
}
