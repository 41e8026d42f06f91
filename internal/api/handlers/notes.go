package handlers

import (
	"errors"
	"net/http"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/notes"
)

// NotesHandler handles note analysis API requests.
type NotesHandler struct {
	analyzer *notes.Analyzer
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(analyzer *notes.Analyzer) *NotesHandler {
	return &NotesHandler{analyzer: analyzer}
}

// GetAnalysis mines the user's game notes for recurring mistakes, matchup
// patterns and learnings. A hero query parameter narrows the analysis to one
// hero's games.
func (h *NotesHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		response.InternalError(w, errors.New("notes analyzer not configured"))
		return
	}

	hero := r.URL.Query().Get("hero")
	report, err := h.analyzer.Analyze(r.Context(), hero)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, report)
}
