package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable through RENTENPLAN_STORE
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// ServerConfig holds the settings of the HTTP service
type ServerConfig struct {
	Addr           string
	StoreBackend   string
	RedisURL       string
	PostgresURL    string
	DraftTTL       time.Duration
	RegulatoryFile string
	MaxBodySize    int
}

// LoadServerConfig reads server settings from the environment after loading the
// given .env files. Missing .env files are ignored.
func LoadServerConfig(envFiles ...string) (*ServerConfig, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &ServerConfig{
		Addr:           getenv("RENTENPLAN_ADDR", ":8080"),
		StoreBackend:   getenv("RENTENPLAN_STORE", StoreMemory),
		RedisURL:       os.Getenv("REDIS_URL"),
		PostgresURL:    os.Getenv("DATABASE_URL"),
		RegulatoryFile: os.Getenv("RENTENPLAN_REGULATORY_FILE"),
		DraftTTL:       30 * 24 * time.Hour,
		MaxBodySize:    1 << 20,
	}

	if v := os.Getenv("RENTENPLAN_DRAFT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RENTENPLAN_DRAFT_TTL %q: %w", v, err)
		}
		cfg.DraftTTL = ttl
	}
	if v := os.Getenv("RENTENPLAN_MAX_BODY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid RENTENPLAN_MAX_BODY_SIZE %q", v)
		}
		cfg.MaxBodySize = n
	}

	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q (use %s, %s or %s)", cfg.StoreBackend, StoreMemory, StoreRedis, StorePostgres)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
