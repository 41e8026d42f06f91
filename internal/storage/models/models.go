package models

import "time"

// RelationKind identifies the direction of a counter matchup fact.
type RelationKind string

const (
	// StrongAgainst means the hero wins the matchup against the other hero.
	StrongAgainst RelationKind = "strong_against"
	// WeakAgainst means the hero loses the matchup against the other hero.
	WeakAgainst RelationKind = "weak_against"
)

// Valid reports whether k is one of the two known relation kinds.
func (k RelationKind) Valid() bool {
	return k == StrongAgainst || k == WeakAgainst
}

// Hero represents one canonical game character. The Name column is the
// primary key; every other table references heroes by this exact string.
type Hero struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Role      *string   `json:"role,omitempty"`
	Lane      *string   `json:"lane,omitempty"`
	Specialty *string   `json:"specialty,omitempty"`
	WinRate   *float64  `json:"win_rate,omitempty"`
	Tier      *string   `json:"tier,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CounterRelation is a directed edge between two heroes. Rows are unique on
// (Hero, OtherHero, Kind) and replaced wholesale when the hero is rescraped.
type CounterRelation struct {
	Hero      string       `json:"hero"`
	OtherHero string       `json:"other_hero"`
	Kind      RelationKind `json:"kind"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// GameRecord is one logged game played by the user.
type GameRecord struct {
	ID        int       `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Hero      string    `json:"hero"`
	Role      *string   `json:"role,omitempty"`
	Teammates []string  `json:"teammates,omitempty"` // Stored as a JSON array column
	Enemies   []string  `json:"enemies"`             // Stored as a JSON array column, non-empty
	Result    string    `json:"result"`              // "Win" or "Loss"
	MVPStatus *string   `json:"mvp_status,omitempty"` // "MVP", "Gold", "Silver" or nil
	Kills     *int      `json:"kills,omitempty"`
	Deaths    *int      `json:"deaths,omitempty"`
	Assists   *int      `json:"assists,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Won reports whether the record is a win.
func (g *GameRecord) Won() bool {
	return g.Result == "Win"
}

// DraftSession tracks one live draft from first ban to logged result.
type DraftSession struct {
	ID          int        `json:"id"`
	Status      string     `json:"status"` // "in_progress" or "completed"
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Hero      *string  `json:"hero,omitempty"`
	Role      *string  `json:"role,omitempty"`
	Enemies   []string `json:"enemies,omitempty"`
	Teammates []string `json:"teammates,omitempty"`
	Banned    []string `json:"banned,omitempty"`

	Result    *string `json:"result,omitempty"`
	MVPStatus *string `json:"mvp_status,omitempty"`
	Kills     *int    `json:"kills,omitempty"`
	Deaths    *int    `json:"deaths,omitempty"`
	Assists   *int    `json:"assists,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Session status values.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// HeroStats is the per-hero aggregate over the user's game history.
type HeroStats struct {
	Hero       string  `json:"hero"`
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	WinRate    float64 `json:"win_rate"` // Percentage, 0 when TotalGames is 0
	AvgKills   float64 `json:"avg_kills"`
	AvgDeaths  float64 `json:"avg_deaths"`
	AvgAssists float64 `json:"avg_assists"`
	Confidence string  `json:"confidence"` // none, low, medium or high, from TotalGames
}

// MatchupStats is the user's record playing one hero against one enemy.
type MatchupStats struct {
	Hero    string  `json:"hero"`
	Enemy   string  `json:"enemy"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"` // Percentage
}

// EnemyEncounter aggregates results against one enemy across all heroes.
type EnemyEncounter struct {
	Enemy   string  `json:"enemy"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
}

// SessionStats summarizes the draft sessions table.
type SessionStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Abandoned  int `json:"abandoned"`
}
