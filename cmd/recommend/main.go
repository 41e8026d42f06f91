// Package main is the one-shot recommendation CLI: it answers a single draft
// query from the local database and prints the ranked picks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mlcounter/draft-companion/internal/config"
	"github.com/mlcounter/draft-companion/internal/display"
	"github.com/mlcounter/draft-companion/internal/draft"
	"github.com/mlcounter/draft-companion/internal/meta"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Configuration file path (default: ~/.draft-companion/config.toml)")
	pool       = flag.String("pool", "", "Comma-separated candidate heroes (empty: every known hero)")
	enemies    = flag.String("enemies", "", "Comma-separated enemy picks")
	teammates  = flag.String("teammates", "", "Comma-separated teammate picks")
	topN       = flag.Int("top", 0, "Number of recommendations to show (0: config default)")
	compact    = flag.Bool("compact", false, "Render as a fixed-width table")
	noInverse  = flag.Bool("no-inverse", false, "Disable inverse counter inference")
	noPersonal = flag.Bool("no-personal", false, "Disable personal history signals")
)

func main() {
	flag.Parse()

	if *enemies == "" {
		fmt.Fprintln(os.Stderr, "Usage: recommend -enemies Hero1,Hero2 [-pool ...] [-top N]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := zap.NewNop()
	if cfg.App.DebugMode {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	storageCfg := storage.DefaultConfig(cfg.Database.Path)
	storageCfg.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(storageCfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	heroRepo := repository.NewHeroRepository(db.Conn())
	counterRepo := repository.NewCounterRepository(db.Conn())
	historyRepo := repository.NewHistoryRepository(db.Conn())

	metaReloader, err := meta.NewReloader(cfg.Meta.Path, logger)
	if err != nil {
		log.Fatalf("Failed to load meta document: %v", err)
	}

	engine, err := draft.NewEngine(ctx, heroRepo, counterRepo, historyRepo, metaReloader, cfg.Weights, logger)
	if err != nil {
		log.Fatalf("Failed to build recommendation engine: %v", err)
	}

	poolNames := splitNames(*pool)
	if len(poolNames) == 0 {
		poolNames, err = heroRepo.ListNames(ctx)
		if err != nil {
			log.Fatalf("Failed to list heroes: %v", err)
		}
		if len(poolNames) == 0 {
			log.Fatal("No heroes in the database; run the scraper first")
		}
	}

	n := *topN
	if n <= 0 {
		n = cfg.Draft.TopN
	}

	resp, err := engine.Recommend(ctx, draft.Request{
		Pool:            poolNames,
		Enemies:         splitNames(*enemies),
		Teammates:       splitNames(*teammates),
		BaseScore:       cfg.Draft.BaseScore,
		TopN:            n,
		MaxReasons:      cfg.Draft.MaxReasons,
		DisableInverse:  *noInverse,
		DisablePersonal: *noPersonal,
	})
	if err != nil {
		log.Fatalf("Recommendation failed: %v", err)
	}

	if *compact {
		display.RecommendationsCompact(os.Stdout, resp)
		return
	}
	display.Recommendations(os.Stdout, resp)
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}
