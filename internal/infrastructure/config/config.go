package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all backend configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Profiles  ProfilesConfig
	Text      TextConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig identifies the driver's default location.
type StorageConfig struct {
	// Root is the storage root the driver operates on. Empty resolves to
	// ~/filedock at load time.
	Root string `envconfig:"STORAGE_ROOT" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// JobsConfig holds job host configuration.
type JobsConfig struct {
	// TasksFile points at an optional TOML file of scheduled archive tasks.
	TasksFile string `envconfig:"JOBS_TASKS_FILE" default:""`
}

// ProfilesConfig holds the connection-profile store configuration.
type ProfilesConfig struct {
	DBPath string `envconfig:"PROFILES_DB" default:"profiles.db"`
}

// TextConfig holds text codec limits.
type TextConfig struct {
	// MaxBytes is the load ceiling: larger files fail with the structured
	// out-of-memory condition instead of being materialized.
	MaxBytes int64 `envconfig:"TEXT_MAX_BYTES" default:"67108864"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	resolveStorageRoot(&cfg)
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Profiles: ProfilesConfig{
			DBPath: "profiles.db",
		},
		Text: TextConfig{
			MaxBytes: 67108864,
		},
	}
	resolveStorageRoot(cfg)
	return cfg
}

func resolveStorageRoot(cfg *Config) {
	if cfg.Storage.Root != "" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		cfg.Storage.Root = "/tmp/filedock"
		return
	}
	cfg.Storage.Root = filepath.Join(home, "filedock")
}
