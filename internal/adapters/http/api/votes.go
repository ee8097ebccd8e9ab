package api

import (
	"net/http"
	"strings"

	"github.com/okian/recipebox/internal/domain/rating"
)

type voteRequest struct {
	Rating float64 `json:"rating"`
}

type voteResponse struct {
	Accepted bool         `json:"accepted"`
	Stats    rating.Stats `json:"stats"`
}

// VoteHandler handles rating votes.
type VoteHandler struct {
	deps Voter
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(deps Voter) *VoteHandler {
	return &VoteHandler{deps: deps}
}

// HandleVote handles POST /recipes/{id}/votes. A rejected vote is still a 200
// with accepted=false and the unchanged aggregate.
func (h *VoteHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", err)
		return
	}
	sid := strings.TrimSpace(r.Header.Get(SessionHeader))
	if sid == "" {
		writeError(w, http.StatusBadRequest, "missing_session", ErrMissingSession)
		return
	}
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	accepted, stats, err := h.deps.Vote(r.Context(), sid, id, req.Rating)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Accepted: accepted, Stats: stats})
}
