package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	for _, key := range []string{"RENTENPLAN_ADDR", "RENTENPLAN_STORE", "RENTENPLAN_DRAFT_TTL", "RENTENPLAN_MAX_BODY_SIZE", "RENTENPLAN_REGULATORY_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadServerConfig("does-not-exist.env")
	require.NoError(t, err, "missing .env files are ignored")

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 30*24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 1<<20, cfg.MaxBodySize)
}

func TestLoadServerConfig_EnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set
	for _, key := range []string{"RENTENPLAN_ADDR", "RENTENPLAN_STORE", "REDIS_URL", "RENTENPLAN_DRAFT_TTL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	envFile := writeFile(t, ".env", "RENTENPLAN_ADDR=127.0.0.1:9090\nRENTENPLAN_STORE=redis\nREDIS_URL=redis://localhost:6379/0\nRENTENPLAN_DRAFT_TTL=48h\n")

	cfg, err := LoadServerConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 48*time.Hour, cfg.DraftTTL)
}

func TestLoadServerConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"unknown backend", map[string]string{"RENTENPLAN_STORE": "mongo"}, "unknown store backend"},
		{"redis without url", map[string]string{"RENTENPLAN_STORE": "redis", "REDIS_URL": ""}, "REDIS_URL is required"},
		{"postgres without url", map[string]string{"RENTENPLAN_STORE": "postgres", "DATABASE_URL": ""}, "DATABASE_URL is required"},
		{"bad ttl", map[string]string{"RENTENPLAN_STORE": "", "RENTENPLAN_DRAFT_TTL": "a week"}, "invalid RENTENPLAN_DRAFT_TTL"},
		{"bad body size", map[string]string{"RENTENPLAN_STORE": "", "RENTENPLAN_DRAFT_TTL": "", "RENTENPLAN_MAX_BODY_SIZE": "-5"}, "invalid RENTENPLAN_MAX_BODY_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServerConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
