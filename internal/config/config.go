package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mlcounter/draft-companion/internal/draft"
)

// Config represents the application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Meta statistics document configuration
	Meta MetaConfig `toml:"meta"`

	// Draft engine configuration
	Draft DraftConfig `toml:"draft"`

	// Scoring weight overrides
	Weights draft.Weights `toml:"weights"`

	// Scraper configuration
	Scraper ScraperConfig `toml:"scraper"`

	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite database
	AutoMigrate bool   `toml:"auto_migrate"` // Run pending migrations on open
	BackupDir   string `toml:"backup_dir"`   // Directory for database backups
}

// MetaConfig contains meta document settings.
type MetaConfig struct {
	Path        string `toml:"path"`         // Path to meta.json
	WatchReload bool   `toml:"watch_reload"` // Reload when the file changes
}

// DraftConfig contains recommendation defaults.
type DraftConfig struct {
	BaseScore  float64 `toml:"base_score"`  // Neutral midpoint score
	TopN       int     `toml:"top_n"`       // Result count cap
	MaxReasons int     `toml:"max_reasons"` // Explanation clause cap
}

// ScraperConfig contains data harvesting settings.
type ScraperConfig struct {
	BaseURL        string  `toml:"base_url"`         // Counter data source root
	RequestsPerSec float64 `toml:"requests_per_sec"` // Outbound rate limit
	MaxRetries     int     `toml:"max_retries"`      // Per-page fetch retries
	Timeout        string  `toml:"timeout"`          // Per-request timeout (e.g., "15s")
	UserAgent      string  `toml:"user_agent"`
}

// ServerConfig contains dashboard API settings.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"` // e.g., ":8080"
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "mlcounter.db",
			AutoMigrate: true,
			BackupDir:   "backups",
		},
		Meta: MetaConfig{
			Path:        "meta.json",
			WatchReload: true,
		},
		Draft: DraftConfig{
			BaseScore:  5.0,
			TopN:       10,
			MaxReasons: 3,
		},
		Weights: draft.DefaultWeights(),
		Scraper: ScraperConfig{
			RequestsPerSec: 0.5,
			MaxRetries:     3,
			Timeout:        "15s",
			UserAgent:      "draft-companion/1.0",
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".draft-companion")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default location. Returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. Missing file yields
// defaults; present files are parsed over the defaults so unspecified keys
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Draft.TopN <= 0 {
		return fmt.Errorf("top_n must be positive: %d", c.Draft.TopN)
	}

	if c.Draft.MaxReasons <= 0 {
		return fmt.Errorf("max_reasons must be positive: %d", c.Draft.MaxReasons)
	}

	if c.Weights.MinGamesConfidence < 1 {
		return fmt.Errorf("min_games_confidence must be at least 1: %d", c.Weights.MinGamesConfidence)
	}

	if c.Scraper.RequestsPerSec <= 0 {
		return fmt.Errorf("requests_per_sec must be positive: %v", c.Scraper.RequestsPerSec)
	}

	if _, err := time.ParseDuration(c.Scraper.Timeout); err != nil {
		return fmt.Errorf("invalid scraper timeout %q: %w", c.Scraper.Timeout, err)
	}

	return nil
}

// GetScraperTimeout returns the scraper request timeout as a duration.
func (c *Config) GetScraperTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scraper.Timeout)
}
