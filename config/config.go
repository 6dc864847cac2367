// Package config loads service settings from the environment, an optional
// .env file and an optional YAML overlay.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ClickHouseConfig struct {
	Host       string `yaml:"host"`
	NativePort int    `yaml:"native_port" validate:"omitempty,min=1,max=65535"`
	Database   string `yaml:"database"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	PublicBaseURL   string `yaml:"public_base_url" validate:"omitempty,url"`
}

type GitHubConfig struct {
	Username string `yaml:"username" validate:"required"`
	Token    string `yaml:"token"`
}

type Config struct {
	Port    string `yaml:"port" validate:"required,numeric"`
	GinMode string `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`

	DatabaseDriver string `yaml:"database_driver" validate:"oneof=postgres sqlite3"`
	DatabaseURL    string `yaml:"database_url" validate:"required"`
	AutoMigrate    bool   `yaml:"auto_migrate"`

	AnalyticsBackend string           `yaml:"analytics_backend" validate:"oneof=sql clickhouse"`
	ClickHouse       ClickHouseConfig `yaml:"clickhouse"`

	FrontendOrigin    string `yaml:"frontend_origin" validate:"required"`
	AdminPasswordHash string `yaml:"admin_password_hash"`

	SessionMode   string        `yaml:"session_mode" validate:"oneof=client token"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`

	Timezone          string `yaml:"timezone" validate:"required"`
	ContentEscapeHTML bool   `yaml:"content_escape_html"`

	GCS    GCSConfig    `yaml:"gcs"`
	GitHub GitHubConfig `yaml:"github"`

	SearchIndexPath string `yaml:"search_index_path"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=json text"`
}

// Default returns the settings used for local development.
func Default() *Config {
	return &Config{
		Port:             "8080",
		DatabaseDriver:   "postgres",
		AnalyticsBackend: "sql",
		ClickHouse:       ClickHouseConfig{NativePort: 9000},
		FrontendOrigin:   "http://localhost:3000",
		SessionMode:      "client",
		SessionTTL:       365 * 24 * time.Hour,
		Timezone:         "Local",
		GitHub:           GitHubConfig{Username: "fedjosity"},
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE, then environment variables. A .env file in the working
// directory is loaded into the environment first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.DatabaseDriver, "DATABASE_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.AnalyticsBackend, "ANALYTICS_BACKEND")
	setString(&c.ClickHouse.Host, "CLICKHOUSE_HOST")
	setString(&c.ClickHouse.Database, "CLICKHOUSE_DB_NAME")
	setString(&c.ClickHouse.Username, "CLICKHOUSE_USERNAME")
	setString(&c.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	setString(&c.FrontendOrigin, "FE_ORIGIN")
	setString(&c.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&c.SessionMode, "SESSION_MODE")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.GCS.Bucket, "GCS_BUCKET")
	setString(&c.GCS.CredentialsFile, "GCS_CREDENTIALS_FILE")
	setString(&c.GCS.PublicBaseURL, "GCS_PUBLIC_BASE_URL")
	setString(&c.GitHub.Username, "GITHUB_USERNAME")
	setString(&c.GitHub.Token, "GITHUB_TOKEN")
	setString(&c.SearchIndexPath, "SEARCH_INDEX_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if err := setInt(&c.ClickHouse.NativePort, "CLICKHOUSE_NATIVE_PORT"); err != nil {
		return err
	}
	if err := setDuration(&c.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	for key, dst := range map[string]*bool{
		"AUTO_MIGRATE":        &c.AutoMigrate,
		"SECURE_COOKIES":      &c.SecureCookies,
		"CONTENT_ESCAPE_HTML": &c.ContentEscapeHTML,
	} {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks field constraints and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.AnalyticsBackend == "clickhouse" && (c.ClickHouse.Host == "" || c.ClickHouse.Database == "") {
		return errors.New("invalid configuration: CLICKHOUSE_HOST and CLICKHOUSE_DB_NAME are required for the clickhouse analytics backend")
	}
	if c.SessionMode == "token" && c.SessionSecret == "" {
		return errors.New("invalid configuration: SESSION_SECRET is required when SESSION_MODE=token")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location resolves Timezone, used to cut the analytics daily series.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
