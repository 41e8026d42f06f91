package handlers

import (
	"net/http"
	"sort"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/charts"
	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// ChartsHandler renders history aggregates as standalone HTML charts.
type ChartsHandler struct {
	history repository.HistoryRepository
	config  charts.ChartConfig
}

// NewChartsHandler creates a new ChartsHandler.
func NewChartsHandler(history repository.HistoryRepository) *ChartsHandler {
	return &ChartsHandler{history: history, config: charts.DefaultChartConfig()}
}

// WinRateTrend renders daily win rate as a line chart.
func (h *ChartsHandler) WinRateTrend(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.WinRateTrend(stats.WinRateByDay(records), h.config, w); err != nil {
		response.InternalError(w, err)
	}
}

// HeroPerformance renders per-hero win rates as a bar chart.
func (h *ChartsHandler) HeroPerformance(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.HeroPerformance(stats.TopHeroes(records, 5), h.config, w); err != nil {
		response.InternalError(w, err)
	}
}

// EnemyMatchups renders win rates against each faced enemy as a bar chart.
func (h *ChartsHandler) EnemyMatchups(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.EnemyMatchups(stats.EnemyEncounters(records), h.config, w); err != nil {
		response.InternalError(w, err)
	}
}

// RoleDistribution renders games-per-role as a pie chart.
func (h *ChartsHandler) RoleDistribution(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	byRole := stats.RoleDistribution(records)
	roles := make([]charts.DataPoint, 0, len(byRole))
	for role, games := range byRole {
		roles = append(roles, charts.DataPoint{Label: role, Value: float64(games)})
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Label < roles[j].Label })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RoleDistribution(roles, h.config, w); err != nil {
		response.InternalError(w, err)
	}
}
