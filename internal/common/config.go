// Package common provides shared utilities for Sika
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Sika
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Auth        AuthConfig      `toml:"auth"`
	Jobs        JobRunnerConfig `toml:"jobs"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	GSE GSEConfig `toml:"gse"`
}

// GSEConfig holds configuration for the GSE market feed client.
type GSEConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GSEConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// JobRunnerConfig holds background job runner configuration.
type JobRunnerConfig struct {
	MaxConcurrent   int    `toml:"max_concurrent"`
	MaxRetries      int    `toml:"max_retries"`
	WatcherInterval string `toml:"watcher_interval"` // duration string, default "15m"
	SyncInterval    string `toml:"sync_interval"`    // market sync freshness window, default "1h"
	PurgeAfter      string `toml:"purge_after"`      // completed job retention, default "24h"
}

// GetWatcherInterval parses and returns the watcher loop interval.
func (c *JobRunnerConfig) GetWatcherInterval() time.Duration {
	d, err := time.ParseDuration(c.WatcherInterval)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetSyncInterval parses and returns the market sync freshness window.
func (c *JobRunnerConfig) GetSyncInterval() time.Duration {
	d, err := time.ParseDuration(c.SyncInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetMaxRetries returns the per-job attempt limit.
func (c *JobRunnerConfig) GetMaxRetries() int {
	if c.MaxRetries <= 0 {
		return 3
	}
	return c.MaxRetries
}

// GetPurgeAfter parses and returns the completed job retention window.
func (c *JobRunnerConfig) GetPurgeAfter() time.Duration {
	d, err := time.ParseDuration(c.PurgeAfter)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "sika",
			Database:  "sika",
		},
		Clients: ClientsConfig{
			GSE: GSEConfig{
				BaseURL:   "https://dev.kwayisi.org/apis/gse",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Jobs: JobRunnerConfig{
			MaxConcurrent:   3,
			MaxRetries:      3,
			WatcherInterval: "15m",
			SyncInterval:    "1h",
			PurgeAfter:      "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SIKA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SIKA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SIKA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SIKA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("SIKA_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("SIKA_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("SIKA_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}
	if ns := os.Getenv("SIKA_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}
	if db := os.Getenv("SIKA_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}

	if url := os.Getenv("SIKA_GSE_BASE_URL"); url != "" {
		config.Clients.GSE.BaseURL = url
	}

	if v := os.Getenv("SIKA_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("SIKA_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
