package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	service "github.com/okian/recipebox/internal/app"
	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/rating"
	"github.com/okian/recipebox/internal/domain/types"
)

// SessionHeader carries the browse session a vote belongs to.
const SessionHeader = "X-Session-ID"

// RecipeReader serves the read side of the catalog.
type RecipeReader interface {
	List(ctx context.Context, st catalog.FilterState) (types.Page, error)
	Recipe(ctx context.Context, id int, sessionID string) (types.RecipeDetail, error)
	Rating(ctx context.Context, id int) (rating.Stats, error)
	Categories(ctx context.Context) ([]string, error)
	Difficulties(ctx context.Context) ([]string, error)
}

// Voter accepts rating votes.
type Voter interface {
	Vote(ctx context.Context, sessionID string, id int, value float64) (bool, rating.Stats, error)
}

// FavoriteStore reads and toggles favorites.
type FavoriteStore interface {
	Favorites(ctx context.Context, query string) ([]types.RecipeCard, error)
	ToggleFavorite(ctx context.Context, id int) (bool, error)
}

// SessionManager owns browse sessions and their filter state.
type SessionManager interface {
	OpenSession(ctx context.Context) (types.Session, error)
	CloseSession(ctx context.Context, sessionID string) error
	Browse(ctx context.Context, sessionID string) (types.Page, catalog.FilterState, error)
	UpdateBrowse(ctx context.Context, sessionID string, u catalog.Update) (types.Page, catalog.FilterState, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecipeReader
	Voter
	FavoriteStore
	SessionManager
	ReadinessProvider
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	recipeHandler   *RecipeHandler
	voteHandler     *VoteHandler
	favoriteHandler *FavoriteHandler
	sessionHandler  *SessionHandler

	rateLimit   int
	rateWindow  time.Duration
	corsOrigins []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		rateLimit:   defaultRateLimit,
		rateWindow:  defaultRateWindow,
		corsOrigins: []string{"*"},
	}
	cfg := handlerConfig{pageSizes: []int{6, 9, 18}, perPage: catalog.DefaultPerPage}
	for _, opt := range opts {
		opt(s, &cfg)
	}
	v := newValidator(cfg.pageSizes)

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.recipeHandler = NewRecipeHandler(deps, v, cfg.perPage)
	s.voteHandler = NewVoteHandler(deps)
	s.favoriteHandler = NewFavoriteHandler(deps)
	s.sessionHandler = NewSessionHandler(deps, v)
	return s
}

// Router builds the chi router with every route and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.Register(r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Get("/recipes", MetricsMiddleware(s.recipeHandler.HandleList, "recipes"))
	r.Get("/recipes/{id}", MetricsMiddleware(s.recipeHandler.HandleGet, "recipe"))
	r.Get("/recipes/{id}/rating", MetricsMiddleware(s.recipeHandler.HandleRating, "rating"))
	r.Get("/categories", MetricsMiddleware(s.recipeHandler.HandleCategories, "categories"))
	r.Get("/difficulties", MetricsMiddleware(s.recipeHandler.HandleDifficulties, "difficulties"))
	r.Get("/favorites", MetricsMiddleware(s.favoriteHandler.HandleList, "favorites"))
	r.Get("/sessions/{sid}/browse", MetricsMiddleware(s.sessionHandler.HandleBrowse, "browse"))

	r.Group(func(w chi.Router) {
		if s.rateLimit > 0 {
			w.Use(httprate.Limit(s.rateLimit, s.rateWindow,
				httprate.WithKeyByIP(),
				httprate.WithLimitHandler(limitHandler),
			))
		}
		w.Post("/recipes/{id}/votes", MetricsMiddleware(s.voteHandler.HandleVote, "votes"))
		w.Post("/favorites/{id}", MetricsMiddleware(s.favoriteHandler.HandleToggle, "favorite_toggle"))
		w.Post("/sessions", MetricsMiddleware(s.sessionHandler.HandleOpen, "sessions"))
		w.Delete("/sessions/{sid}", MetricsMiddleware(s.sessionHandler.HandleClose, "session_close"))
		w.Patch("/sessions/{sid}/browse", MetricsMiddleware(s.sessionHandler.HandleUpdate, "browse_update"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound), errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidBrowse):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// decodeBody reads a JSON body into dst; unknown fields are rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.DecodeContext(r.Context(), dst); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
