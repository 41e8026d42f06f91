package handlers

import (
	"net/http"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/metrics"
)

// MetricsHandler handles engine metrics API requests.
type MetricsHandler struct {
	metrics *metrics.EngineMetrics
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(m *metrics.EngineMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// GetStats returns a point-in-time snapshot of engine and scraper counters.
func (h *MetricsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		response.Success(w, metrics.EngineStats{})
		return
	}
	response.Success(w, h.metrics.GetStats())
}
