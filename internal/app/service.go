// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/recipebox/internal/adapters/dataset"
	"github.com/okian/recipebox/internal/adapters/storage"
	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/favorites"
	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/internal/domain/recipe"
	"github.com/okian/recipebox/internal/domain/types"
	"github.com/okian/recipebox/internal/domain/votegate"
	"github.com/okian/recipebox/pkg/logger"
	"github.com/okian/recipebox/pkg/metrics"
)

// Service owns the recipe catalog, the durable rating and favorite state,
// and the per-session browse state.
type Service struct {
	// lifecycle serializes Start and Stop; mu guards the published state.
	lifecycle sync.Mutex
	mu        sync.RWMutex

	// Core components
	recipes   []recipe.Recipe
	store     storage.Store
	ownsStore bool
	ratings   *rating.Aggregator
	favorites *favorites.Set
	gate      *votegate.Gate
	sessions  sync.Map // session id -> *catalog.Browser

	// Configuration
	dataDir        string
	perPage        int
	pageSizes      []int
	loadDelay      time.Duration
	maxSessions    int
	presetRecipes  []recipe.Recipe
	datasetOptions []dataset.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir stores ratings and favorites on disk under dir.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		s.dataDir = dir
	}
}

// WithStore uses store instead of opening a badger database. The caller keeps
// ownership and closes it.
func WithStore(store storage.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRecipes skips the dataset load and serves recipes as given.
func WithRecipes(recipes []recipe.Recipe) Option {
	return func(s *Service) {
		s.presetRecipes = recipes
	}
}

// WithDatasetOptions passes options to the dataset loader.
func WithDatasetOptions(opts ...dataset.Option) Option {
	return func(s *Service) {
		s.datasetOptions = append(s.datasetOptions, opts...)
	}
}

// WithItemsPerPage sets the initial page size of new sessions.
func WithItemsPerPage(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithPageSizes sets the page sizes a session may switch to.
func WithPageSizes(sizes []int) Option {
	return func(s *Service) {
		s.pageSizes = slices.Clone(sizes)
	}
}

// WithLoadDelay sets the simulated dataset load latency.
func WithLoadDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.loadDelay = d
		}
	}
}

// WithMaxSessions bounds the number of sessions held in memory.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.maxSessions = n
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		perPage:     catalog.DefaultPerPage,
		pageSizes:   []int{6, 9, 18},
		loadDelay:   dataset.DefaultDelay,
		maxSessions: 10_000,
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset, opens storage and restores ratings and favorites.
// A ctx cancelled during the load delay leaves the service unstarted.
func (s *Service) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.Started() {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recipe service...")

	// Loading runs without s.mu so readiness probes answer while it waits.
	recipes := s.presetRecipes
	if recipes == nil {
		opts := append([]dataset.Option{dataset.WithDelay(s.loadDelay)}, s.datasetOptions...)
		loaded, err := dataset.Load(ctx, opts...)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		recipes = loaded
	}

	store := s.store
	ownsStore := false
	if store == nil {
		opened, err := storage.Open(
			storage.WithDir(s.dataDir),
			storage.WithLogger(s.logger.Named("storage")),
		)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		store = opened
		ownsStore = true
	}

	repoLogger := storage.WithRepoLogger(s.logger.Named("storage"))
	gate := votegate.New(
		votegate.WithMaxSessions(s.maxSessions),
		votegate.WithEvictHook(func(id string) { s.sessions.Delete(id) }),
	)
	ratings := rating.NewAggregator(recipes,
		storage.NewRatingRepository(store, repoLogger),
		gate,
		rating.WithLogger(s.logger.Named("rating")),
	)
	ratings.Init(ctx)
	favs := favorites.New(storage.NewFavoritesRepository(store, repoLogger))
	favs.Init(ctx)

	s.mu.Lock()
	s.recipes = recipes
	s.store = store
	s.ownsStore = ownsStore
	s.gate = gate
	s.ratings = ratings
	s.favorites = favs
	s.started = true
	s.mu.Unlock()

	metrics.UpdateRecipesLoaded(len(recipes))
	s.logger.Info(ctx, "recipe service started",
		logger.Int("recipes", len(recipes)),
		logger.Int("favorites", favs.Len()),
		logger.String("dataDir", s.dataDir),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recipe service...")

	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing storage", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.sessions.Clear()

	s.started = false
	s.logger.Info(context.Background(), "recipe service stopped")
}

// Started reports whether Start completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// ready returns ErrNotStarted until Start has completed.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) find(id int) (*recipe.Recipe, error) {
	r, ok := recipe.Find(s.recipes, id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	return r, nil
}

func (s *Service) card(ctx context.Context, r *recipe.Recipe) types.RecipeCard {
	st := s.ratings.Stats(ctx, r.ID)
	return types.RecipeCard{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Image:         r.Image,
		Category:      r.Category,
		Difficulty:    r.Difficulty,
		PrepTime:      r.PrepTime,
		AverageRating: st.AverageRating,
		RatingCount:   st.RatingCount,
		Favorite:      s.favorites.Contains(ctx, r.ID),
	}
}

func (s *Service) cards(ctx context.Context, rs []recipe.Recipe) []types.RecipeCard {
	out := make([]types.RecipeCard, len(rs))
	for i := range rs {
		out[i] = s.card(ctx, &rs[i])
	}
	return out
}

func (s *Service) page(ctx context.Context, res catalog.Result, sort catalog.SortOption) types.Page {
	metrics.RecordCatalogQuery(string(sort), len(res.Items))
	return types.Page{
		Items:          s.cards(ctx, res.Items),
		Total:          res.Total,
		Page:           res.Page,
		PerPage:        res.PerPage,
		TotalPages:     res.TotalPages,
		ShowPagination: res.ShowPagination,
	}
}
