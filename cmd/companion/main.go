// Package main runs the draft companion server: the recommendation engine
// and its REST API over the local counter database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mlcounter/draft-companion/internal/api"
	"github.com/mlcounter/draft-companion/internal/config"
	"github.com/mlcounter/draft-companion/internal/draft"
	"github.com/mlcounter/draft-companion/internal/meta"
	"github.com/mlcounter/draft-companion/internal/metrics"
	"github.com/mlcounter/draft-companion/internal/notes"
	"github.com/mlcounter/draft-companion/internal/storage"
	"github.com/mlcounter/draft-companion/internal/storage/repository"
	"github.com/mlcounter/draft-companion/internal/version"
)

var (
	configPath = flag.String("config", "", "Configuration file path (default: ~/.draft-companion/config.toml)")
	listenAddr = flag.String("listen", "", "Listen address override (e.g. :8080)")

	backupPath  = flag.String("backup", "", "Back up the database into this directory and exit")
	restorePath = flag.String("restore", "", "Restore the database from this backup and exit")
	backupPass  = flag.String("backup-password", "", "Encrypt the backup, or decrypt on restore")
)

func main() {
	flag.Parse()

	fmt.Printf("Draft Companion %s\n", version.GetVersion())
	fmt.Println("=================")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.App.DebugMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *backupPath != "" || *restorePath != "" {
		runBackupCommand(cfg.Database.Path)
		return
	}

	// Open database
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

	fmt.Printf("Database: %s\n", cfg.Database.Path)

	heroRepo := repository.NewHeroRepository(db.Conn())
	counterRepo := repository.NewCounterRepository(db.Conn())
	historyRepo := repository.NewHistoryRepository(db.Conn())
	sessionRepo := repository.NewSessionRepository(db.Conn())

	if removed, err := sessionRepo.CleanupAbandoned(context.Background()); err != nil {
		logger.Warn("Session cleanup failed", zap.Error(err))
	} else if removed > 0 {
		logger.Info("Removed abandoned draft sessions", zap.Int("count", removed))
	}

	// Load meta document, optionally watching it for rewrites
	metaReloader, err := meta.NewReloader(cfg.Meta.Path, logger)
	if err != nil {
		log.Fatalf("Failed to load meta document: %v", err)
	}
	if metaReloader.Loaded() {
		fmt.Printf("Meta document: %s (%d heroes)\n", cfg.Meta.Path, metaReloader.Len())
	} else {
		fmt.Printf("Meta document: %s (not found, meta signals disabled)\n", cfg.Meta.Path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Meta.WatchReload {
		go func() {
			if err := metaReloader.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Meta watch stopped", zap.Error(err))
			}
		}()
	}

	// Build the recommendation engine
	engine, err := draft.NewEngine(ctx, heroRepo, counterRepo, historyRepo, metaReloader, cfg.Weights, logger)
	if err != nil {
		log.Fatalf("Failed to build recommendation engine: %v", err)
	}

	engineMetrics := metrics.NewEngineMetrics()
	engine.SetMetrics(engineMetrics)

	analyzer, err := notes.NewAnalyzer(historyRepo)
	if err != nil {
		log.Fatalf("Failed to build notes analyzer: %v", err)
	}

	// Create and start the API server
	server := api.NewServer(
		&api.Config{ListenAddr: cfg.Server.ListenAddr},
		&api.Deps{
			Engine:             engine,
			Heroes:             heroRepo,
			Counters:           counterRepo,
			History:            historyRepo,
			Sessions:           sessionRepo,
			Analyzer:           analyzer,
			Meta:               metaReloader,
			Metrics:            engineMetrics,
			MinGamesConfidence: cfg.Weights.MinGamesConfidence,
		},
		logger,
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost%s\n", cfg.Server.ListenAddr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error during shutdown", zap.Error(err))
	}

	fmt.Println("Server stopped.")
}

// runBackupCommand handles the one-shot -backup / -restore modes.
func runBackupCommand(dbPath string) {
	manager := storage.NewBackupManager(dbPath)

	var enc *storage.EncryptionConfig
	if *backupPass != "" {
		enc = storage.DefaultEncryptionConfig(*backupPass)
	}

	if *restorePath != "" {
		if err := manager.Restore(*restorePath, enc); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Restored %s from %s\n", dbPath, *restorePath)
		return
	}

	path, err := manager.Backup(&storage.BackupOptions{
		Dir:        *backupPath,
		Verify:     true,
		Encryption: enc,
	})
	if err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	fmt.Printf("Backup written to %s\n", path)
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
