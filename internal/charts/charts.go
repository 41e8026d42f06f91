// Package charts renders interactive HTML charts over the user's game
// history: win-rate trend, per-hero performance and enemy matchup records.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// ChartConfig holds presentation options shared by all chart kinds.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string
	Height     string
	Theme      string
	ShowLegend bool
	Smooth     bool
	Colors     []string
}

// DefaultChartConfig returns the stock presentation options.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint is one labeled value.
type DataPoint struct {
	Label string
	Value float64
}

// WinRateTrend renders daily win rate as a smooth line chart.
func WinRateTrend(points []stats.DailyPoint, config ChartConfig, w io.Writer) error {
	data := make([]DataPoint, len(points))
	for i, p := range points {
		data[i] = DataPoint{Label: p.Date, Value: p.WinRate}
	}
	if config.Title == "" {
		config.Title = "Win Rate Over Time"
	}
	return renderLine("Win Rate", data, config, w)
}

// HeroPerformance renders per-hero win rates as a bar chart, one bar per
// hero in the given order.
func HeroPerformance(heroStats []*models.HeroStats, config ChartConfig, w io.Writer) error {
	data := make([]DataPoint, len(heroStats))
	for i, s := range heroStats {
		data[i] = DataPoint{
			Label: fmt.Sprintf("%s (%d)", s.Hero, s.TotalGames),
			Value: s.WinRate,
		}
	}
	if config.Title == "" {
		config.Title = "Hero Performance"
	}
	return renderBar("Win Rate", data, config, w)
}

// EnemyMatchups renders win rates against the most-faced enemies.
func EnemyMatchups(encounters []*models.EnemyEncounter, config ChartConfig, w io.Writer) error {
	data := make([]DataPoint, len(encounters))
	for i, e := range encounters {
		data[i] = DataPoint{
			Label: fmt.Sprintf("%s (%d)", e.Enemy, e.Total),
			Value: e.WinRate,
		}
	}
	if config.Title == "" {
		config.Title = "Enemy Matchups"
	}
	return renderBar("Win Rate vs Enemy", data, config, w)
}

// RoleDistribution renders games per role as a pie chart. Roles are rendered
// in the given order.
func RoleDistribution(roles []DataPoint, config ChartConfig, w io.Writer) error {
	pie := charts.NewPie()
	if config.Title == "" {
		config.Title = "Role Distribution"
	}
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	items := make([]opts.PieData, len(roles))
	for i, r := range roles {
		items[i] = opts.PieData{Name: r.Label, Value: r.Value}
	}
	pie.AddSeries("Games", items)

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func renderLine(seriesName string, data []DataPoint, config ChartConfig, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(config)...)

	xLabels := make([]string, len(data))
	yData := make([]opts.LineData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.LineData{Value: point.Value}
	}

	line.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(config.Smooth),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func renderBar(seriesName string, data []DataPoint, config ChartConfig, w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(config)...)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func globalOptions(config ChartConfig) []charts.GlobalOpts {
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	}
	if len(config.Colors) > 0 {
		global = append(global, charts.WithColorsOpts(opts.Colors{config.Colors[0]}))
	}
	return global
}

// RenderToFile writes one chart to an HTML file using the given render
// function.
func RenderToFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
