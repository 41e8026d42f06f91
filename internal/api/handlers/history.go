package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/export"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// HistoryHandler handles game history API requests.
type HistoryHandler struct {
	history repository.HistoryRepository
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// CreateGameRequest is the JSON body for logging a finished game.
type CreateGameRequest struct {
	Date      string   `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Hero      string   `json:"hero"`
	Role      *string  `json:"role,omitempty"`
	Teammates []string `json:"teammates,omitempty"`
	Enemies   []string `json:"enemies"`
	Result    string   `json:"result"`
	MVPStatus *string  `json:"mvp_status,omitempty"`
	Kills     *int     `json:"kills,omitempty"`
	Deaths    *int     `json:"deaths,omitempty"`
	Assists   *int     `json:"assists,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

// ToRecord converts the request to a GameRecord model.
func (r *CreateGameRequest) ToRecord() *models.GameRecord {
	date := r.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	return &models.GameRecord{
		Date:      date,
		Hero:      r.Hero,
		Role:      r.Role,
		Teammates: r.Teammates,
		Enemies:   r.Enemies,
		Result:    r.Result,
		MVPStatus: r.MVPStatus,
		Kills:     r.Kills,
		Deaths:    r.Deaths,
		Assists:   r.Assists,
		Notes:     r.Notes,
	}
}

// ListGames returns the game history. A limit query parameter switches to
// the most recent games, newest first.
func (h *HistoryHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	var (
		records []*models.GameRecord
		err     error
	)

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, convErr := strconv.Atoi(limitStr)
		if convErr != nil || limit < 1 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		records, err = h.history.Recent(r.Context(), limit)
	} else {
		records, err = h.history.ListAll(r.Context())
	}

	if err != nil {
		response.InternalError(w, err)
		return
	}

	if records == nil {
		records = []*models.GameRecord{}
	}
	response.Success(w, records)
}

// ListGamesByHero returns every logged game on one hero, oldest first.
func (h *HistoryHandler) ListGamesByHero(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("hero name is required"))
		return
	}

	records, err := h.history.ListByHero(r.Context(), name)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	if records == nil {
		records = []*models.GameRecord{}
	}
	response.Success(w, records)
}

// CreateGame logs a finished game.
func (h *HistoryHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	rec := req.ToRecord()
	if err := h.history.Create(r.Context(), rec); err != nil {
		if errors.Is(err, repository.ErrInvalidRecord) {
			response.BadRequest(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	response.Created(w, rec)
}

// ExportGames streams the full game history as a CSV or JSON download. The
// format query parameter defaults to csv.
func (h *HistoryHandler) ExportGames(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	records, err := h.history.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if len(records) == 0 {
		response.NotFound(w, errors.New("no game history to export"))
		return
	}

	contentType := "text/csv"
	if format == export.FormatJSON {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename("history", format)))

	// Headers are already written; a mid-stream failure can only truncate.
	_ = export.Write(w, format, export.HistoryRows(records))
}

// DeleteGame removes one logged game by id.
func (h *HistoryHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, errors.New("invalid game id"))
		return
	}

	if err := h.history.Delete(r.Context(), id); err != nil {
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}
