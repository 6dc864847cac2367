package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 48*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "sql", cfg.AnalyticsBackend)
	assert.Equal(t, "fedjosity", cfg.GitHub.Username)
}

func TestLoad_YAMLOverlayThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	yamlDoc := []byte(`
port: "7000"
database_driver: sqlite3
database_url: "file:portfolio.db"
analytics_backend: clickhouse
clickhouse:
  host: ch.internal
  database: analytics
github:
  username: someone
`)
	require.NoError(t, os.WriteFile(path, yamlDoc, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "clickhouse", cfg.AnalyticsBackend)
	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
	assert.Equal(t, 9000, cfg.ClickHouse.NativePort)
	assert.Equal(t, "someone", cfg.GitHub.Username)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.DatabaseURL = "postgres://localhost/portfolio"
		cfg.Timezone = "UTC"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"missing database url":    func(c *Config) { c.DatabaseURL = "" },
		"unknown driver":          func(c *Config) { c.DatabaseDriver = "mysql" },
		"clickhouse without host": func(c *Config) { c.AnalyticsBackend = "clickhouse" },
		"token without secret":    func(c *Config) { c.SessionMode = "token" },
		"bad timezone":            func(c *Config) { c.Timezone = "Mars/Olympus" },
		"bad log level":           func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio")
	t.Setenv("AUTO_MIGRATE", "sometimes")

	_, err := Load()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
