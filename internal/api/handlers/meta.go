package handlers

import (
	"errors"
	"net/http"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/meta"
)

// MetaHandler handles meta document API requests.
type MetaHandler struct {
	reloader *meta.Reloader
}

// NewMetaHandler creates a new MetaHandler.
func NewMetaHandler(reloader *meta.Reloader) *MetaHandler {
	return &MetaHandler{reloader: reloader}
}

// MetaStatus reports the state of the loaded meta document.
type MetaStatus struct {
	Loaded  bool `json:"loaded"`
	Entries int  `json:"entries"`
}

// GetStatus reports whether a meta document is loaded and how many heroes it
// covers.
func (h *MetaHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		response.Success(w, MetaStatus{})
		return
	}

	response.Success(w, MetaStatus{
		Loaded:  h.reloader.Loaded(),
		Entries: h.reloader.Len(),
	})
}

// Reload re-reads the meta document from disk, picking up a fresh scrape
// without a restart.
func (h *MetaHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		response.InternalError(w, errors.New("meta document not configured"))
		return
	}

	if err := h.reloader.Reload(); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, MetaStatus{
		Loaded:  h.reloader.Loaded(),
		Entries: h.reloader.Len(),
	})
}
