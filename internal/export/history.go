package export

import (
	"strings"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// HistoryRow is one game record flattened for export. List columns join their
// values with "|" so the CSV stays one row per game.
type HistoryRow struct {
	ID        int    `csv:"id" json:"id"`
	Date      string `csv:"date" json:"date"`
	Hero      string `csv:"hero" json:"hero"`
	Role      string `csv:"role" json:"role"`
	Result    string `csv:"result" json:"result"`
	Enemies   string `csv:"enemies" json:"enemies"`
	Teammates string `csv:"teammates" json:"teammates"`
	MVPStatus string `csv:"mvp_status" json:"mvp_status"`
	Kills     *int   `csv:"kills" json:"kills"`
	Deaths    *int   `csv:"deaths" json:"deaths"`
	Assists   *int   `csv:"assists" json:"assists"`
	Notes     string `csv:"notes" json:"notes"`
}

// HistoryRows flattens game records for export, preserving their order.
func HistoryRows(records []*models.GameRecord) []HistoryRow {
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, HistoryRow{
			ID:        rec.ID,
			Date:      rec.Date,
			Hero:      rec.Hero,
			Role:      strOrEmpty(rec.Role),
			Result:    rec.Result,
			Enemies:   strings.Join(rec.Enemies, "|"),
			Teammates: strings.Join(rec.Teammates, "|"),
			MVPStatus: strOrEmpty(rec.MVPStatus),
			Kills:     rec.Kills,
			Deaths:    rec.Deaths,
			Assists:   rec.Assists,
			Notes:     strOrEmpty(rec.Notes),
		})
	}
	return rows
}

// StatsRow is one per-hero aggregate flattened for export.
type StatsRow struct {
	Hero       string  `csv:"hero" json:"hero"`
	Games      int     `csv:"games" json:"games"`
	Wins       int     `csv:"wins" json:"wins"`
	Losses     int     `csv:"losses" json:"losses"`
	WinRate    float64 `csv:"win_rate" json:"win_rate"`
	AvgKills   float64 `csv:"avg_kills" json:"avg_kills"`
	AvgDeaths  float64 `csv:"avg_deaths" json:"avg_deaths"`
	AvgAssists float64 `csv:"avg_assists" json:"avg_assists"`
	Confidence string  `csv:"confidence" json:"confidence"`
}

// StatsRows flattens hero aggregates for export.
func StatsRows(stats []*models.HeroStats) []StatsRow {
	rows := make([]StatsRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, StatsRow{
			Hero:       s.Hero,
			Games:      s.TotalGames,
			Wins:       s.Wins,
			Losses:     s.Losses,
			WinRate:    s.WinRate,
			AvgKills:   s.AvgKills,
			AvgDeaths:  s.AvgDeaths,
			AvgAssists: s.AvgAssists,
			Confidence: s.Confidence,
		})
	}
	return rows
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
