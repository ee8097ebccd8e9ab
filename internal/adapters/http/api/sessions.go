package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/okian/recipebox/internal/domain/catalog"
	"github.com/okian/recipebox/internal/domain/types"
)

// browseRequest is the PATCH body for a session's filter state. Absent fields are untouched.
type browseRequest struct {
	SearchTerm   *string `json:"search_term" validate:"omitnil,max=100"`
	Category     *string `json:"category" validate:"omitnil,max=64"`
	Difficulty   *string `json:"difficulty" validate:"omitnil,difficulty"`
	Sort         *string `json:"sort" validate:"omitnil,oneof=rating_desc rating_asc difficulty_asc difficulty_desc"`
	Page         *int    `json:"page" validate:"omitnil,gte=1"`
	PerPage      *int    `json:"per_page" validate:"omitnil,pagesize"`
	ClearFilters bool    `json:"clear_filters"`
}

func (b browseRequest) update() catalog.Update {
	u := catalog.Update{
		SearchTerm:   b.SearchTerm,
		Category:     b.Category,
		Difficulty:   b.Difficulty,
		Page:         b.Page,
		PerPage:      b.PerPage,
		ClearFilters: b.ClearFilters,
	}
	if b.Sort != nil {
		s := catalog.SortOption(*b.Sort)
		u.Sort = &s
	}
	return u
}

type browseResponse struct {
	State catalog.FilterState `json:"state"`
	Page  types.Page          `json:"page"`
}

// SessionHandler handles browse sessions.
type SessionHandler struct {
	deps     SessionManager
	validate *validator.Validate
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionManager, v *validator.Validate) *SessionHandler {
	return &SessionHandler{deps: deps, validate: v}
}

// HandleOpen handles POST /sessions.
func (h *SessionHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.OpenSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// HandleClose handles DELETE /sessions/{sid}.
func (h *SessionHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.CloseSession(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBrowse handles GET /sessions/{sid}/browse.
func (h *SessionHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	page, st, err := h.deps.Browse(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, browseResponse{State: st, Page: page})
}

// HandleUpdate handles PATCH /sessions/{sid}/browse.
func (h *SessionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req browseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if err := validateStruct(h.validate, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}
	page, st, err := h.deps.UpdateBrowse(r.Context(), chi.URLParam(r, "sid"), req.update())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, browseResponse{State: st, Page: page})
}
