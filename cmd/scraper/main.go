// Package main runs the data harvesting pipeline: it scrapes counter pages
// into the hero and counter tables and merges rank statistics into the meta
// document.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mlcounter/draft-companion/internal/config"
	"github.com/mlcounter/draft-companion/internal/scraper"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
	"github.com/mlcounter/draft-companion/internal/version"
)

var (
	configPath = flag.String("config", "", "Configuration file path (default: ~/.draft-companion/config.toml)")
	heroList   = flag.String("heroes", "hero_list.txt", "Hero page list file (one 'Name | url' per line)")
	ranksURL   = flag.String("ranks-url", "", "Rank statistics page URL to merge into the meta document")
	skipPages  = flag.Bool("skip-pages", false, "Skip hero page scraping, only sync ranks")
)

func main() {
	flag.Parse()

	fmt.Printf("Draft Companion Scraper %s\n", version.GetVersion())
	fmt.Println("=======================")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.App.DebugMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	storageCfg := storage.DefaultConfig(cfg.Database.Path)
	storageCfg.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(storageCfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Error closing database", zap.Error(err))
		}
	}()

	timeout, err := cfg.GetScraperTimeout()
	if err != nil {
		log.Fatalf("Invalid scraper timeout: %v", err)
	}
	fetcher := scraper.NewFetcher(scraper.FetcherOptions{
		RequestsPerSec: cfg.Scraper.RequestsPerSec,
		MaxRetries:     cfg.Scraper.MaxRetries,
		Timeout:        timeout,
		UserAgent:      cfg.Scraper.UserAgent,
		Logger:         logger,
	})

	heroRepo := repository.NewHeroRepository(db.Conn())
	counterRepo := repository.NewCounterRepository(db.Conn())
	s := scraper.New(fetcher, heroRepo, counterRepo, logger)

	// Cancel in-flight work on Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !*skipPages {
		targets, err := loadTargets(*heroList)
		if err != nil {
			log.Fatalf("Failed to read hero list: %v", err)
		}
		fmt.Printf("Scraping %d hero pages into %s...\n", len(targets), cfg.Database.Path)

		synced, failed := s.SyncAll(ctx, targets)
		fmt.Printf("Done: %d synced, %d failed\n", synced, failed)
		if ctx.Err() != nil {
			fmt.Println("Interrupted.")
			os.Exit(1)
		}
	}

	if *ranksURL != "" {
		fmt.Printf("Merging rank statistics into %s...\n", cfg.Meta.Path)
		updated, err := s.SyncRanks(ctx, *ranksURL, cfg.Meta.Path)
		if err != nil {
			log.Fatalf("Failed to sync ranks: %v", err)
		}
		fmt.Printf("Updated %d meta entries\n", updated)
	}
}

func loadTargets(path string) ([]scraper.HeroTarget, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scraper.ParseHeroList(f)
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
