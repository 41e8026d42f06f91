package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mlcounter/draft-companion/internal/api/response"
	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

// StatsHandler handles history aggregate API requests.
type StatsHandler struct {
	history  repository.HistoryRepository
	minGames int
}

// NewStatsHandler creates a new StatsHandler. minGames is the sample size
// treated as a trustworthy aggregate.
func NewStatsHandler(history repository.HistoryRepository, minGames int) *StatsHandler {
	if minGames < 1 {
		minGames = 5
	}
	return &StatsHandler{history: history, minGames: minGames}
}

// Overview is the headline summary of the full game history.
type Overview struct {
	Overall    *models.HeroStats  `json:"overall"`
	Streaks    *stats.StreakStats `json:"streaks"`
	Roles      map[string]int     `json:"roles"`
	Daily      []stats.DailyPoint `json:"daily"`
	TotalGames int                `json:"total_games"`
}

// loadRecords fetches history, optionally windowed by range/offset query
// parameters (range=week|month, offset in whole periods back from now).
func (h *StatsHandler) loadRecords(r *http.Request) ([]*models.GameRecord, error) {
	records, err := h.history.ListAll(r.Context())
	if err != nil {
		return nil, err
	}

	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		return records, nil
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return nil, errValidation{errors.New("offset must be an integer")}
		}
	}

	switch rangeName {
	case "week":
		return stats.FilterRecords(records, stats.WeekRange(offset)), nil
	case "month":
		return stats.FilterRecords(records, stats.MonthRange(offset)), nil
	default:
		return nil, errValidation{fmt.Errorf("unknown range: %s", rangeName)}
	}
}

// errValidation marks request errors so callers answer 400 instead of 500.
type errValidation struct{ error }

func writeStatsError(w http.ResponseWriter, err error) {
	var ve errValidation
	if errors.As(err, &ve) {
		response.BadRequest(w, ve.error)
		return
	}
	response.InternalError(w, err)
}

// GetOverview returns the headline history summary.
func (h *StatsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	records, err := h.loadRecords(r)
	if err != nil {
		writeStatsError(w, err)
		return
	}

	roles := stats.RoleDistribution(records)
	if roles == nil {
		roles = map[string]int{}
	}
	daily := stats.WinRateByDay(records)
	if daily == nil {
		daily = []stats.DailyPoint{}
	}

	response.Success(w, Overview{
		Overall:    stats.OverallAggregate(records, h.minGames),
		Streaks:    stats.CalculateStreaks(records),
		Roles:      roles,
		Daily:      daily,
		TotalGames: len(records),
	})
}

// ListHeroStats returns per-hero aggregates, best win rate first.
func (h *StatsHandler) ListHeroStats(w http.ResponseWriter, r *http.Request) {
	records, err := h.loadRecords(r)
	if err != nil {
		writeStatsError(w, err)
		return
	}

	top := stats.TopHeroes(records, h.minGames)
	if top == nil {
		top = []*models.HeroStats{}
	}
	response.Success(w, top)
}

// HeroDetail is one hero's aggregate with streaks over that hero's games.
type HeroDetail struct {
	Stats   *models.HeroStats  `json:"stats"`
	Streaks *stats.StreakStats `json:"streaks"`
}

// GetHeroStats returns the aggregate for one hero.
func (h *StatsHandler) GetHeroStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("hero name is required"))
		return
	}

	records, err := h.loadRecords(r)
	if err != nil {
		writeStatsError(w, err)
		return
	}

	agg := stats.HeroAggregate(name, records, h.minGames)
	heroRecords := make([]*models.GameRecord, 0, agg.TotalGames)
	for _, rec := range records {
		if rec.Hero == name {
			heroRecords = append(heroRecords, rec)
		}
	}

	response.Success(w, HeroDetail{
		Stats:   agg,
		Streaks: stats.CalculateStreaks(heroRecords),
	})
}

// GetMatchup returns the user's record playing one hero against one enemy.
func (h *StatsHandler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	hero := chi.URLParam(r, "hero")
	enemy := chi.URLParam(r, "enemy")
	if hero == "" || enemy == "" {
		response.BadRequest(w, errors.New("hero and enemy names are required"))
		return
	}

	records, err := h.history.ListByHero(r.Context(), hero)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	matchup := stats.MatchupAggregate(hero, enemy, records)
	if matchup == nil {
		response.NotFound(w, fmt.Errorf("no games recorded playing %s against %s", hero, enemy))
		return
	}

	response.Success(w, matchup)
}

// ListEnemyEncounters returns aggregate results against each enemy faced,
// most faced first.
func (h *StatsHandler) ListEnemyEncounters(w http.ResponseWriter, r *http.Request) {
	records, err := h.loadRecords(r)
	if err != nil {
		writeStatsError(w, err)
		return
	}

	encounters := stats.EnemyEncounters(records)
	if encounters == nil {
		encounters = []*models.EnemyEncounter{}
	}
	response.Success(w, encounters)
}
