package draft

// Weights is the scoring weight table. Every signal contribution is a product
// of a retrieved fact and one of these values; callers override any subset
// through configuration and the rest keep their defaults.
type Weights struct {
	StrongHit   float64 `toml:"strong_hit"`
	WeakHit     float64 `toml:"weak_hit"`
	Win         float64 `toml:"win"`
	Pick        float64 `toml:"pick"`
	Ban         float64 `toml:"ban"`
	Tier        float64 `toml:"tier"`
	PersonalWR  float64 `toml:"personal_wr"`
	MatchupWin  float64 `toml:"matchup_win"`
	MatchupLoss float64 `toml:"matchup_loss"`

	// MinGamesConfidence is the game count at which a personal sample is
	// labeled high confidence.
	MinGamesConfidence int `toml:"min_games_confidence"`
}

// DefaultWeights returns the stock weight table.
func DefaultWeights() Weights {
	return Weights{
		StrongHit:          1.25,
		WeakHit:            -1.25,
		Win:                0.18,
		Pick:               0.02,
		Ban:                0.05,
		Tier:               0.75,
		PersonalWR:         0.08,
		MatchupWin:         1.5,
		MatchupLoss:        -1.8,
		MinGamesConfidence: 5,
	}
}
