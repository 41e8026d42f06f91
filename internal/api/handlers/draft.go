// Package handlers implements the HTTP handlers behind the API routes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/draft"
)

// DraftHandler handles draft recommendation requests.
type DraftHandler struct {
	engine *draft.Engine
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(engine *draft.Engine) *DraftHandler {
	return &DraftHandler{engine: engine}
}

// Recommend scores a candidate pool against the enemy draft and returns the
// ranked recommendations.
func (h *DraftHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		response.InternalError(w, errors.New("recommendation engine not configured"))
		return
	}

	var req draft.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if len(req.Pool) == 0 {
		response.BadRequest(w, errors.New("pool must contain at least one hero"))
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, resp)
}
