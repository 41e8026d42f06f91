// Package main renders the game-history dashboard charts to standalone HTML
// files, for browsing without the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/mlcounter/draft-companion/internal/charts"
	"github.com/mlcounter/draft-companion/internal/config"
	"github.com/mlcounter/draft-companion/internal/stats"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/models"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Configuration file path (default: ~/.draft-companion/config.toml)")
	outDir     = flag.String("out", "reports", "Output directory for chart HTML files")
	minGames   = flag.Int("min-games", 5, "Minimum games for a hero to chart")
	open       = flag.Bool("open", false, "Open the win-rate chart in the default browser")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	storageCfg := storage.DefaultConfig(cfg.Database.Path)
	storageCfg.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(storageCfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	historyRepo := repository.NewHistoryRepository(db.Conn())
	records, err := historyRepo.ListAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to load game history: %v", err)
	}
	if len(records) == 0 {
		log.Fatal("No game history logged yet; nothing to chart")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	chartCfg := charts.DefaultChartConfig()
	files := map[string]func(io.Writer) error{
		"winrate.html": func(w io.Writer) error {
			return charts.WinRateTrend(stats.WinRateByDay(records), chartCfg, w)
		},
		"heroes.html": func(w io.Writer) error {
			return charts.HeroPerformance(stats.TopHeroes(records, *minGames), chartCfg, w)
		},
		"enemies.html": func(w io.Writer) error {
			return charts.EnemyMatchups(stats.EnemyEncounters(records), chartCfg, w)
		},
		"roles.html": func(w io.Writer) error {
			return charts.RoleDistribution(rolePoints(records), chartCfg, w)
		},
	}

	for name, render := range files {
		path := filepath.Join(*outDir, name)
		if err := charts.RenderToFile(path, render); err != nil {
			log.Fatalf("Failed to render %s: %v", name, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if *open {
		if err := charts.OpenInBrowser(filepath.Join(*outDir, "winrate.html")); err != nil {
			log.Fatalf("Failed to open browser: %v", err)
		}
	}
}

func rolePoints(records []*models.GameRecord) []charts.DataPoint {
	byRole := stats.RoleDistribution(records)
	roles := make([]charts.DataPoint, 0, len(byRole))
	for role, games := range byRole {
		roles = append(roles, charts.DataPoint{Label: role, Value: float64(games)})
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Label < roles[j].Label })
	return roles
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}
