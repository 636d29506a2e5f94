// Package config loads settings from a .env file and SKISPOT_* environment
// variables. Environment variables always take precedence over .env values.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/ski-spot/internal/geocode"
	"github.com/pfrederiksen/ski-spot/internal/routing"
	"github.com/pfrederiksen/ski-spot/internal/scraper"
	"github.com/pfrederiksen/ski-spot/internal/storage"
)

// Store backends
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config holds all application configuration
type Config struct {
	// Storage
	Store   string
	DataDir string
	DBPath  string

	// Server
	Port  string
	Debug bool

	// Refresh policy: scrape when fewer than FreshMin records were refreshed
	// within CacheTimeout
	CacheTimeout time.Duration
	FreshMin     int

	// External services
	OSRMURL      string
	OSRMBatch    bool
	NominatimURL string
	SourceURL    string
	RedisAddr    string

	CoordsFile        string
	ScrapeConcurrency int
}

// Load reads configuration from a .env file (if present) and then from the
// environment
func Load() (*Config, error) {
	// a missing .env is fine; production uses real env vars
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SKISPOT")
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Store:             v.GetString("STORE"),
		DataDir:           v.GetString("DATA_DIR"),
		DBPath:            v.GetString("DB_PATH"),
		Port:              v.GetString("PORT"),
		Debug:             v.GetBool("DEBUG"),
		CacheTimeout:      time.Duration(v.GetInt("CACHE_TIMEOUT")) * time.Second,
		FreshMin:          v.GetInt("FRESH_MIN"),
		OSRMURL:           v.GetString("OSRM_URL"),
		OSRMBatch:         v.GetBool("OSRM_BATCH"),
		NominatimURL:      v.GetString("NOMINATIM_URL"),
		SourceURL:         v.GetString("SOURCE_URL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		CoordsFile:        v.GetString("COORDS_FILE"),
		ScrapeConcurrency: v.GetInt("SCRAPE_CONCURRENCY"),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath(cfg.DataDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultDBPath is the SQLite database location inside dataDir
func DefaultDBPath(dataDir string) string {
	return filepath.Join(dataDir, "skispot.db")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE", StoreSQLite)
	v.SetDefault("DATA_DIR", storage.DefaultDataDir)
	v.SetDefault("PORT", ":8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("CACHE_TIMEOUT", 1800)
	v.SetDefault("FRESH_MIN", 50)
	v.SetDefault("OSRM_URL", routing.DefaultBaseURL)
	v.SetDefault("OSRM_BATCH", true)
	v.SetDefault("NOMINATIM_URL", geocode.DefaultBaseURL)
	v.SetDefault("SOURCE_URL", scraper.DefaultBaseURL)
	v.SetDefault("SCRAPE_CONCURRENCY", 4)
}

// Validate checks that settings are usable
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreFile:
	default:
		return fmt.Errorf("config: unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreFile)
	}
	if c.CacheTimeout <= 0 {
		return fmt.Errorf("config: SKISPOT_CACHE_TIMEOUT must be positive")
	}
	if c.FreshMin < 0 {
		return fmt.Errorf("config: SKISPOT_FRESH_MIN must not be negative")
	}
	if c.ScrapeConcurrency < 1 {
		return fmt.Errorf("config: SKISPOT_SCRAPE_CONCURRENCY must be at least 1")
	}
	return nil
}
