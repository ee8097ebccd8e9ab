package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/okian/recipebox/internal/domain/catalog"
)

// listQuery mirrors the query string of GET /recipes.
type listQuery struct {
	Query      string `json:"q" validate:"max=100"`
	Category   string `json:"category" validate:"max=64"`
	Difficulty string `json:"difficulty" validate:"difficulty"`
	Sort       string `json:"sort" validate:"omitempty,oneof=rating_desc rating_asc difficulty_asc difficulty_desc"`
	Page       int    `json:"page" validate:"gte=1"`
	PerPage    int    `json:"per_page" validate:"pagesize"`
}

func (q listQuery) state() catalog.FilterState {
	st := catalog.DefaultState(q.PerPage)
	st.SearchTerm = q.Query
	if q.Category != "" {
		st.Category = q.Category
	}
	if q.Difficulty != "" {
		st.Difficulty = q.Difficulty
	}
	if q.Sort != "" {
		st.Sort = catalog.SortOption(q.Sort)
	}
	st.Page = q.Page
	return st
}

// RecipeHandler handles catalog reads.
type RecipeHandler struct {
	deps     RecipeReader
	validate *validator.Validate
	perPage  int
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(deps RecipeReader, v *validator.Validate, perPage int) *RecipeHandler {
	return &RecipeHandler{deps: deps, validate: v, perPage: perPage}
}

// HandleList handles GET /recipes. Filters come from the query string; no session state is kept.
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := validateStruct(h.validate, q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	page, err := h.deps.List(r.Context(), q.state())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGet handles GET /recipes/{id}.
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err)
		return
	}
	detail, err := h.deps.Recipe(r.Context(), id, r.Header.Get(SessionHeader))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleRating handles GET /recipes/{id}/rating.
func (h *RecipeHandler) HandleRating(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err)
		return
	}
	stats, err := h.deps.Rating(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleCategories handles GET /categories.
func (h *RecipeHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDifficulties handles GET /difficulties.
func (h *RecipeHandler) HandleDifficulties(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Difficulties(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RecipeHandler) parseListQuery(r *http.Request) (listQuery, error) {
	v := r.URL.Query()
	q := listQuery{
		Query:      v.Get("q"),
		Category:   v.Get("category"),
		Difficulty: v.Get("difficulty"),
		Sort:       v.Get("sort"),
		Page:       1,
		PerPage:    h.perPage,
	}
	var err error
	if q.Page, err = intParam(v.Get("page"), q.Page); err != nil {
		return q, err
	}
	if q.PerPage, err = intParam(v.Get("per_page"), q.PerPage); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrBadRequest, raw)
	}
	return n, nil
}

func recipeID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}
