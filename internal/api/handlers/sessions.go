package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// SessionHandler handles live draft session API requests.
type SessionHandler struct {
	sessions repository.SessionRepository
	history  repository.HistoryRepository
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions repository.SessionRepository, history repository.HistoryRepository) *SessionHandler {
	return &SessionHandler{sessions: sessions, history: history}
}

// UpdateSessionRequest carries draft-progress changes. Nil fields are left
// untouched.
type UpdateSessionRequest struct {
	Hero      *string  `json:"hero,omitempty"`
	Role      *string  `json:"role,omitempty"`
	Enemies   []string `json:"enemies,omitempty"`
	Teammates []string `json:"teammates,omitempty"`
	Banned    []string `json:"banned,omitempty"`
}

// CompleteSessionRequest records the game result for a finished draft.
type CompleteSessionRequest struct {
	Result    string  `json:"result"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	Assists   int     `json:"assists"`
	MVPStatus *string `json:"mvp_status,omitempty"`
	Notes     *string `json:"notes,omitempty"`

	// LogToHistory copies the completed session into game history.
	LogToHistory bool `json:"log_to_history"`
}

// CompleteSessionResponse returns the completed session and, when requested,
// the history record created from it.
type CompleteSessionResponse struct {
	Session *models.DraftSession `json:"session"`
	Game    *models.GameRecord   `json:"game,omitempty"`
}

// StartSession creates a draft session, or resumes the one in progress.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.CreateOrResume(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, session)
}

// ListSessions returns the newest sessions.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	sessions, err := h.sessions.Recent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if sessions == nil {
		sessions = []*models.DraftSession{}
	}
	response.Success(w, sessions)
}

// GetActive returns the in-progress session, or 404 when none exists.
func (h *SessionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetActive(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if session == nil {
		response.NotFound(w, errors.New("no draft session in progress"))
		return
	}

	response.Success(w, session)
}

// GetSession returns one session by id.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, errors.New("invalid session id"))
		return
	}

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	response.Success(w, session)
}

// UpdateSession applies draft-progress changes to a session.
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, errors.New("invalid session id"))
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	upd := repository.SessionUpdate{
		Hero:      req.Hero,
		Role:      req.Role,
		Enemies:   req.Enemies,
		Teammates: req.Teammates,
		Banned:    req.Banned,
	}
	if err := h.sessions.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, session)
}

// CompleteSession marks a session completed, records the result, and
// optionally logs it to game history.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, errors.New("invalid session id"))
		return
	}

	var req CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Result != "Win" && req.Result != "Loss" {
		response.BadRequest(w, errors.New(`result must be "Win" or "Loss"`))
		return
	}

	res := repository.SessionResult{
		Result:    req.Result,
		Kills:     req.Kills,
		Deaths:    req.Deaths,
		Assists:   req.Assists,
		MVPStatus: req.MVPStatus,
		Notes:     req.Notes,
	}
	if err := h.sessions.Complete(r.Context(), id, res); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	out := CompleteSessionResponse{}
	if req.LogToHistory {
		game, err := h.sessions.CopyToHistory(r.Context(), id, h.history)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		out.Game = game
	}

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	out.Session = session

	response.Success(w, out)
}

// CancelSession deletes a session.
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, errors.New("invalid session id"))
		return
	}

	if err := h.sessions.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

// GetStats summarizes the sessions table.
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.Stats(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, stats)
}
