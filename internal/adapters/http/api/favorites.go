package api

import (
	"net/http"
)

type toggleResponse struct {
	ID    int  `json:"id"`
	Added bool `json:"added"`
}

// FavoriteHandler handles the favorites list and toggles.
type FavoriteHandler struct {
	deps FavoriteStore
}

// NewFavoriteHandler creates a new favorites handler.
func NewFavoriteHandler(deps FavoriteStore) *FavoriteHandler {
	return &FavoriteHandler{deps: deps}
}

// HandleList handles GET /favorites?q=.
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Favorites(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleToggle handles POST /favorites/{id}.
func (h *FavoriteHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err)
		return
	}
	added, err := h.deps.ToggleFavorite(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, Added: added})
}
