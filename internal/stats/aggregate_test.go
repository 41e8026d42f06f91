package stats

import (
	"testing"
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func record(hero, result string, enemies ...string) *models.GameRecord {
	return &models.GameRecord{Hero: hero, Result: result, Enemies: enemies, Date: "2026-08-01"}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		games    int
		minGames int
		want     string
	}{
		{0, 5, ConfidenceNone},
		{1, 5, ConfidenceLow},
		{2, 5, ConfidenceLow},
		{3, 5, ConfidenceMedium},
		{4, 5, ConfidenceMedium},
		{5, 5, ConfidenceHigh},
		{20, 5, ConfidenceHigh},
		{3, 10, ConfidenceMedium},
		{9, 10, ConfidenceMedium},
		{10, 10, ConfidenceHigh},
	}
	for _, tt := range tests {
		if got := Confidence(tt.games, tt.minGames); got != tt.want {
			t.Errorf("Confidence(%d, %d) = %q, want %q", tt.games, tt.minGames, got, tt.want)
		}
	}
}

func TestHeroAggregate(t *testing.T) {
	records := []*models.GameRecord{
		record("Thamuz", "Win", "Alpha"),
		record("Thamuz", "Loss", "Argus"),
		record("Thamuz", "Win", "Alpha"),
		record("Martis", "Win", "Alpha"), // other hero, ignored
	}
	records[0].Kills, records[0].Deaths, records[0].Assists = intPtr(8), intPtr(2), intPtr(4)
	records[1].Kills, records[1].Deaths, records[1].Assists = intPtr(2), intPtr(6), intPtr(2)

	s := HeroAggregate("Thamuz", records, 5)
	if s.TotalGames != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Errorf("got %d/%d/%d games/wins/losses, want 3/2/1", s.TotalGames, s.Wins, s.Losses)
	}
	if want := 100 * 2.0 / 3.0; s.WinRate != want {
		t.Errorf("WinRate = %v, want %v", s.WinRate, want)
	}
	if s.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %q, want medium", s.Confidence)
	}
	if s.AvgKills != 5 || s.AvgDeaths != 4 || s.AvgAssists != 3 {
		t.Errorf("KDA averages = %v/%v/%v, want 5/4/3", s.AvgKills, s.AvgDeaths, s.AvgAssists)
	}
}

func TestHeroAggregateEmpty(t *testing.T) {
	s := HeroAggregate("Thamuz", nil, 5)
	if s.TotalGames != 0 || s.WinRate != 0 {
		t.Errorf("empty aggregate = %+v", s)
	}
	if s.Confidence != ConfidenceNone {
		t.Errorf("Confidence = %q, want none", s.Confidence)
	}
}

func TestMatchupAggregate(t *testing.T) {
	records := []*models.GameRecord{
		record("Thamuz", "Win", "Alpha", "Chou"),
		record("Thamuz", "Loss", "Alpha"),
		record("Thamuz", "Win", "Chou"),   // no Alpha, ignored
		record("Martis", "Loss", "Alpha"), // other hero, ignored
	}
	m := MatchupAggregate("Thamuz", "Alpha", records)
	if m == nil {
		t.Fatal("expected matchup stats")
	}
	if m.Total != 2 || m.Wins != 1 || m.Losses != 1 || m.WinRate != 50 {
		t.Errorf("got %+v, want 2 total, 1/1, 50%%", m)
	}
}

func TestMatchupAggregateNoGames(t *testing.T) {
	if m := MatchupAggregate("Thamuz", "Alpha", nil); m != nil {
		t.Errorf("expected nil, got %+v", m)
	}
}

func TestMatchupAggregateCaseInsensitiveEnemy(t *testing.T) {
	records := []*models.GameRecord{record("Thamuz", "Win", "alpha")}
	if m := MatchupAggregate("Thamuz", "Alpha", records); m == nil || m.Total != 1 {
		t.Errorf("enemy membership should ignore case, got %+v", m)
	}
}

func TestEnemyEncountersOrdering(t *testing.T) {
	records := []*models.GameRecord{
		record("Thamuz", "Win", "Alpha", "Chou"),
		record("Thamuz", "Loss", "Alpha"),
		record("Martis", "Win", "Chou"),
		record("Martis", "Win", "Balmond"),
	}
	got := EnemyEncounters(records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Alpha and Chou both faced twice; ties break alphabetically.
	if got[0].Enemy != "Alpha" || got[1].Enemy != "Chou" || got[2].Enemy != "Balmond" {
		t.Errorf("order = %s, %s, %s", got[0].Enemy, got[1].Enemy, got[2].Enemy)
	}
	if got[0].Wins != 1 || got[0].Losses != 1 || got[0].WinRate != 50 {
		t.Errorf("Alpha = %+v", got[0])
	}
}

func TestRoleDistribution(t *testing.T) {
	records := []*models.GameRecord{
		{Hero: "Thamuz", Result: "Win", Role: strPtr("EXP")},
		{Hero: "Thamuz", Result: "Loss", Role: strPtr("EXP")},
		{Hero: "Miya", Result: "Win", Role: strPtr("Gold")},
		{Hero: "Argus", Result: "Win"},
	}
	got := RoleDistribution(records)
	if got["EXP"] != 2 || got["Gold"] != 1 || got["Unknown"] != 1 {
		t.Errorf("distribution = %v", got)
	}
}

func TestWinRateByDay(t *testing.T) {
	records := []*models.GameRecord{
		{Hero: "Thamuz", Result: "Win", Date: "2026-08-02"},
		{Hero: "Thamuz", Result: "Loss", Date: "2026-08-01"},
		{Hero: "Thamuz", Result: "Win", Date: "2026-08-01"},
	}
	got := WinRateByDay(records)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2026-08-01" || got[0].Games != 2 || got[0].WinRate != 50 {
		t.Errorf("day[0] = %+v", got[0])
	}
	if got[1].Date != "2026-08-02" || got[1].WinRate != 100 {
		t.Errorf("day[1] = %+v", got[1])
	}
}

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name        string
		results     []string
		wantCurrent int
		wantWin     int
		wantLoss    int
	}{
		{"empty", nil, 0, 0, 0},
		{"single win", []string{"Win"}, 1, 1, 0},
		{"single loss", []string{"Loss"}, -1, 0, 1},
		{"mixed ending on wins", []string{"Loss", "Win", "Win", "Loss", "Win", "Win", "Win"}, 3, 3, 1},
		{"mixed ending on losses", []string{"Win", "Win", "Loss", "Loss"}, -2, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []*models.GameRecord
			for _, res := range tt.results {
				records = append(records, record("Thamuz", res, "Alpha"))
			}
			got := CalculateStreaks(records)
			if got.CurrentStreak != tt.wantCurrent || got.LongestWinStreak != tt.wantWin || got.LongestLossStreak != tt.wantLoss {
				t.Errorf("got %+v, want current %d, win %d, loss %d", got, tt.wantCurrent, tt.wantWin, tt.wantLoss)
			}
		})
	}
}

func TestFilterRecords(t *testing.T) {
	records := []*models.GameRecord{
		{Hero: "Thamuz", Result: "Win", Date: "2026-08-03"},
		{Hero: "Thamuz", Result: "Win", Date: "2026-08-12"},
		{Hero: "Thamuz", Result: "Win", Date: "bad-date"},
	}
	r := TimeRange{
		Start: mustDate(t, "2026-08-03"),
		End:   mustDate(t, "2026-08-10"),
	}
	got := FilterRecords(records, r)
	if len(got) != 1 || got[0].Date != "2026-08-03" {
		t.Errorf("filtered = %v", got)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}
