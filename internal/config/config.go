// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// --------------------------------------------------------------------------
// Source registry — one entry per collected data source, with freshness
// expectations. StaleAfter is how long since the last successful collection
// before the source counts as stale; Critical is reached at
// StaleAfter * CriticalFactor.
// --------------------------------------------------------------------------

type SourceConfig struct {
	ID             string
	StaleAfter     time.Duration
	CriticalFactor float64
}

var SourceRegistry = map[string]SourceConfig{
	"fangraphs_batting":  {ID: "fangraphs_batting", StaleAfter: 24 * time.Hour, CriticalFactor: 2.0},
	"fangraphs_pitching": {ID: "fangraphs_pitching", StaleAfter: 24 * time.Hour, CriticalFactor: 2.0},
	"statcast":           {ID: "statcast", StaleAfter: 2 * time.Hour, CriticalFactor: 3.0},
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string `validate:"required"`
	DBPoolMinConns int    `validate:"min=1"`
	DBPoolMaxConns int    `validate:"min=1,gtefield=DBPoolMinConns"`
	DBPoolMaxLife  time.Duration

	// Collection-run history (local SQLite)
	HistoryPath string `validate:"required"`

	// API server
	APIHost      string
	APIPort      int    `validate:"min=1,max=65535"`
	Environment  string // development, staging, production
	Debug        bool
	CacheEnabled bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (inbound API)
	RateLimitEnabled  bool
	RateLimitRequests int `validate:"min=1"`
	RateLimitWindow   time.Duration

	// External providers
	FanGraphsBaseURL string `validate:"required,url"`
	SavantBaseURL    string `validate:"required,url"`
	ProviderRPM      int    `validate:"min=1"` // requests per minute per provider

	// Freshness thresholds, keyed by source ID
	Freshness map[string]SourceConfig

	// Background maintenance
	MaintenanceEnabled bool
	RetentionInterval  time.Duration
	EventRetention     time.Duration // pitch events older than this are pruned
	HistoryRetention   time.Duration // collection-run rows older than this are pruned

	// Concurrent collection runs in a refresh sweep
	RefreshWorkers int `validate:"min=1"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("POSTGRES_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or POSTGRES_URL must be set")
	}

	cfg := &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		HistoryPath: envOr("HISTORY_DB_PATH", "data/collection_history.db"),

		APIHost:      envOr("API_HOST", "0.0.0.0"),
		APIPort:      envInt("API_PORT", envInt("PORT", 8080)),
		Environment:  envOr("ENVIRONMENT", "development"),
		Debug:        envBool("DEBUG", false),
		CacheEnabled: envBool("CACHE_ENABLED", true),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		FanGraphsBaseURL: envOr("FANGRAPHS_BASE_URL", "https://www.fangraphs.com"),
		SavantBaseURL:    envOr("SAVANT_BASE_URL", "https://baseballsavant.mlb.com"),
		ProviderRPM:      envInt("PROVIDER_REQUESTS_PER_MINUTE", 30),

		Freshness: loadFreshness(),

		MaintenanceEnabled: envBool("MAINTENANCE_ENABLED", true),
		RetentionInterval:  time.Duration(envInt("RETENTION_INTERVAL_MINUTES", 360)) * time.Minute,
		EventRetention:     time.Duration(envInt("EVENT_RETENTION_DAYS", 400)) * 24 * time.Hour,
		HistoryRetention:   time.Duration(envInt("HISTORY_RETENTION_DAYS", 90)) * 24 * time.Hour,

		RefreshWorkers: envInt("REFRESH_WORKERS", 3),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFreshness copies the source registry and applies per-source env
// overrides, e.g. FRESHNESS_STATCAST_HOURS=4 FRESHNESS_STATCAST_FACTOR=2.
func loadFreshness() map[string]SourceConfig {
	out := make(map[string]SourceConfig, len(SourceRegistry))
	for id, sc := range SourceRegistry {
		key := strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
		if h := envFloat("FRESHNESS_"+key+"_HOURS", sc.StaleAfter.Hours()); h > 0 {
			sc.StaleAfter = time.Duration(h * float64(time.Hour))
		}
		if f := envFloat("FRESHNESS_"+key+"_FACTOR", sc.CriticalFactor); f > 1 {
			sc.CriticalFactor = f
		}
		out[id] = sc
	}
	return out
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
