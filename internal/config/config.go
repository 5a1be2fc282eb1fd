// Package config loads Redline configuration from YAML with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/joy7758/redline/internal/domain"
)

// Load builds the effective configuration: defaults, then the YAML file
// at path (if non-empty), then environment overrides.
func Load(path string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides individual settings from REDLINE_* variables.
// Deployment platforms that cannot mount files still get full control.
func applyEnv(cfg *domain.Config) {
	if v := os.Getenv("REDLINE_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REDLINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REDLINE_DB_DRIVER"); v != "" {
		cfg.Repository.Driver = v
	}
	if v := os.Getenv("REDLINE_SQLITE_PATH"); v != "" {
		cfg.Repository.SQLitePath = v
	}
	if v := os.Getenv("REDLINE_POSTGRES_HOST"); v != "" {
		cfg.Repository.PostgresHost = v
	}
	if v := os.Getenv("REDLINE_POSTGRES_PASSWORD"); v != "" {
		cfg.Repository.PostgresPassword = v
	}
	if v := os.Getenv("REDLINE_CACHE_TYPE"); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv("REDLINE_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDLINE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.MaxRequests = n
		}
	}
	if v := os.Getenv("REDLINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("REDLINE_TRACING"); v != "" {
		cfg.Tracing.Enabled = v == "true"
	}
}

// Validate checks settings that would otherwise fail deep inside a
// component at request time.
func Validate(cfg *domain.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", cfg.Server.Port)
	}
	switch cfg.Repository.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("repository.driver must be sqlite or postgres, got %q", cfg.Repository.Driver)
	}
	switch cfg.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.type must be memory or redis, got %q", cfg.Cache.Type)
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rateLimit.maxRequests must be positive when enabled")
	}
	return nil
}
