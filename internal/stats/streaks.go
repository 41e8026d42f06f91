package stats

import (
	"fmt"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// StreakStats holds win/loss streak aggregates for a record slice.
type StreakStats struct {
	CurrentStreak     int `json:"current_streak"` // positive = wins, negative = losses
	LongestWinStreak  int `json:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak"`
}

// CalculateStreaks computes streaks from records ordered oldest to newest.
func CalculateStreaks(records []*models.GameRecord) *StreakStats {
	stats := &StreakStats{}
	currentWinStreak := 0
	currentLossStreak := 0

	for _, r := range records {
		if r.Won() {
			currentWinStreak++
			currentLossStreak = 0
			if currentWinStreak > stats.LongestWinStreak {
				stats.LongestWinStreak = currentWinStreak
			}
		} else {
			currentLossStreak++
			currentWinStreak = 0
			if currentLossStreak > stats.LongestLossStreak {
				stats.LongestLossStreak = currentLossStreak
			}
		}
	}

	if currentWinStreak > 0 {
		stats.CurrentStreak = currentWinStreak
	} else if currentLossStreak > 0 {
		stats.CurrentStreak = -currentLossStreak
	}

	return stats
}

// FormatCurrentStreak returns a human-readable string for the current streak.
func FormatCurrentStreak(streak int) string {
	if streak == 0 {
		return "No active streak"
	}
	if streak > 0 {
		if streak == 1 {
			return "1 win streak"
		}
		return fmt.Sprintf("%d win streak", streak)
	}
	absStreak := -streak
	if absStreak == 1 {
		return "1 loss streak"
	}
	return fmt.Sprintf("%d loss streak", absStreak)
}
