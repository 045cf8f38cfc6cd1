// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the insights service.
type Config struct {
	Env                   string
	Port                  string
	GRPCPort              string
	DatabaseURL           string
	DBMaxConns            int32
	RedisURL              string
	CatalogPath           string
	FunnelRefreshInterval time.Duration
	FunnelCacheTTL        time.Duration
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads environment variables (after a best-effort .env load) and
// returns a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	env := os.Getenv("APP_ENV")
	switch env {
	case "":
		env = "development"
	case "development", "production":
	default:
		return nil, fmt.Errorf("APP_ENV must be development or production, got %q", env)
	}

	maxConns, err := positiveInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	refresh, err := positiveInt("FUNNEL_REFRESH_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	ttl, err := positiveInt("FUNNEL_CACHE_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                   env,
		Port:                  envOr("INSIGHTS_PORT", "8083"),
		GRPCPort:              envOr("INSIGHTS_GRPC_PORT", "9083"),
		DatabaseURL:           dbURL,
		DBMaxConns:            int32(maxConns),
		RedisURL:              redisURL,
		CatalogPath:           os.Getenv("CATALOG_PATH"),
		FunnelRefreshInterval: time.Duration(refresh) * time.Minute,
		FunnelCacheTTL:        time.Duration(ttl) * time.Minute,
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
