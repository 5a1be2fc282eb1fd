package domain

import "time"

// Config holds the complete Redline configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// Component configurations
	Repository RepositoryConfig `yaml:"repository"`
	Cache      CacheConfig      `yaml:"cache"`

	// Transport rate limiting
	RateLimit RateLimitConfig `yaml:"rateLimit"`

	// Contract scan engine
	Scan ScanConfig `yaml:"scan"`

	// Observability
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`  // seconds
	WriteTimeout int    `yaml:"writeTimeout"` // seconds
}

// RateLimitConfig bounds per-client request rates using cache counters.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// MaxRequests per Window per client.
	MaxRequests int           `yaml:"maxRequests"`
	Window      time.Duration `yaml:"window"`
}

// ScanConfig holds contract scan engine settings.
type ScanConfig struct {
	// MaxWorkers bounds parallel rule evaluation.
	MaxWorkers int `yaml:"maxWorkers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName"`
}

// DefaultConfig returns the baseline configuration: SQLite store, local
// LRU cache, rate limiting per the original deployment defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./redline.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			MaxRequests: 10,
			Window:      time.Minute,
		},
		Scan: ScanConfig{
			MaxWorkers: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "redline",
		},
	}
}
