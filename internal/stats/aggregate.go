// Package stats computes aggregates over the user's logged game history.
// All functions are pure: they take record slices already fetched from
// storage and never touch the database themselves.
package stats

import (
	"sort"
	"strings"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// Confidence labels for sample sizes. Derived only from game counts, a coarse
// display proxy rather than a statistical measure.
const (
	ConfidenceNone   = "none"
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Confidence maps a game count to its label. minGames is the threshold for
// "high"; counts of 3 up to minGames-1 are "medium", 1-2 are "low".
func Confidence(totalGames, minGames int) string {
	switch {
	case totalGames < 1:
		return ConfidenceNone
	case totalGames < 3:
		return ConfidenceLow
	case totalGames < minGames:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

// HeroAggregate computes overall stats for one hero from its match records.
// Records for other heroes are ignored, so callers may pass an unfiltered
// history slice.
func HeroAggregate(hero string, records []*models.GameRecord, minGames int) *models.HeroStats {
	s := &models.HeroStats{Hero: hero}
	var kills, deaths, assists, kdaCount int
	for _, r := range records {
		if r.Hero != hero {
			continue
		}
		s.TotalGames++
		if r.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
		if r.Kills != nil || r.Deaths != nil || r.Assists != nil {
			kdaCount++
			kills += intOrZero(r.Kills)
			deaths += intOrZero(r.Deaths)
			assists += intOrZero(r.Assists)
		}
	}
	if s.TotalGames > 0 {
		s.WinRate = 100 * float64(s.Wins) / float64(s.TotalGames)
	}
	if kdaCount > 0 {
		s.AvgKills = float64(kills) / float64(kdaCount)
		s.AvgDeaths = float64(deaths) / float64(kdaCount)
		s.AvgAssists = float64(assists) / float64(kdaCount)
	}
	s.Confidence = Confidence(s.TotalGames, minGames)
	return s
}

// OverallAggregate computes stats across every record regardless of hero.
func OverallAggregate(records []*models.GameRecord, minGames int) *models.HeroStats {
	s := &models.HeroStats{Hero: "All"}
	var kills, deaths, assists, kdaCount int
	for _, r := range records {
		s.TotalGames++
		if r.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
		if r.Kills != nil || r.Deaths != nil || r.Assists != nil {
			kdaCount++
			kills += intOrZero(r.Kills)
			deaths += intOrZero(r.Deaths)
			assists += intOrZero(r.Assists)
		}
	}
	if s.TotalGames > 0 {
		s.WinRate = 100 * float64(s.Wins) / float64(s.TotalGames)
	}
	if kdaCount > 0 {
		s.AvgKills = float64(kills) / float64(kdaCount)
		s.AvgDeaths = float64(deaths) / float64(kdaCount)
		s.AvgAssists = float64(assists) / float64(kdaCount)
	}
	s.Confidence = Confidence(s.TotalGames, minGames)
	return s
}

// MatchupAggregate computes the user's record playing hero against enemy.
// A record counts when its hero matches and its enemy list contains the
// enemy. Returns nil when no games match.
func MatchupAggregate(hero, enemy string, records []*models.GameRecord) *models.MatchupStats {
	m := &models.MatchupStats{Hero: hero, Enemy: enemy}
	for _, r := range records {
		if r.Hero != hero || !containsName(r.Enemies, enemy) {
			continue
		}
		m.Total++
		if r.Won() {
			m.Wins++
		} else {
			m.Losses++
		}
	}
	if m.Total == 0 {
		return nil
	}
	m.WinRate = 100 * float64(m.Wins) / float64(m.Total)
	return m
}

// EnemyEncounters aggregates results against every enemy seen across the
// given records, sorted by most-faced first.
func EnemyEncounters(records []*models.GameRecord) []*models.EnemyEncounter {
	byEnemy := map[string]*models.EnemyEncounter{}
	for _, r := range records {
		for _, enemy := range r.Enemies {
			e := byEnemy[enemy]
			if e == nil {
				e = &models.EnemyEncounter{Enemy: enemy}
				byEnemy[enemy] = e
			}
			e.Total++
			if r.Won() {
				e.Wins++
			} else {
				e.Losses++
			}
		}
	}
	out := make([]*models.EnemyEncounter, 0, len(byEnemy))
	for _, e := range byEnemy {
		e.WinRate = 100 * float64(e.Wins) / float64(e.Total)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Enemy < out[j].Enemy
	})
	return out
}

// RoleDistribution counts games per role. Records without a role fall under
// "Unknown".
func RoleDistribution(records []*models.GameRecord) map[string]int {
	out := map[string]int{}
	for _, r := range records {
		role := "Unknown"
		if r.Role != nil && *r.Role != "" {
			role = *r.Role
		}
		out[role]++
	}
	return out
}

// DailyPoint is one day's win rate for trend charts.
type DailyPoint struct {
	Date    string  `json:"date"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// WinRateByDay buckets records by date, ascending. Records are expected in
// any order; dates use the stored YYYY-MM-DD form so lexical sort is
// chronological.
func WinRateByDay(records []*models.GameRecord) []DailyPoint {
	type bucket struct{ games, wins int }
	byDate := map[string]*bucket{}
	for _, r := range records {
		b := byDate[r.Date]
		if b == nil {
			b = &bucket{}
			byDate[r.Date] = b
		}
		b.games++
		if r.Won() {
			b.wins++
		}
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]DailyPoint, 0, len(dates))
	for _, d := range dates {
		b := byDate[d]
		out = append(out, DailyPoint{
			Date:    d,
			Games:   b.games,
			Wins:    b.wins,
			WinRate: 100 * float64(b.wins) / float64(b.games),
		})
	}
	return out
}

// TopHeroes returns per-hero aggregates for every hero in the records, sorted
// by games played descending.
func TopHeroes(records []*models.GameRecord, minGames int) []*models.HeroStats {
	seen := map[string]bool{}
	var order []string
	for _, r := range records {
		if !seen[r.Hero] {
			seen[r.Hero] = true
			order = append(order, r.Hero)
		}
	}
	out := make([]*models.HeroStats, 0, len(order))
	for _, hero := range order {
		out = append(out, HeroAggregate(hero, records, minGames))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalGames > out[j].TotalGames
	})
	return out
}

func containsName(names []string, target string) bool {
	for _, n := range names {
		if strings.EqualFold(n, target) {
			return true
		}
	}
	return false
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
