package domain

import (
	"context"
	"time"
)

// Cache fronts the identifier store for resolve-by-handle reads and
// backs the transport rate limiter with windowed counters.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// GetRecord retrieves a cached identifier record.
	GetRecord(ctx context.Context, handle string) (*PIDRecord, error)

	// SetRecord caches an identifier record. Records are immutable, so a
	// cached copy can never go stale.
	SetRecord(ctx context.Context, handle string, rec *PIDRecord, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns the new
	// value. Used for per-client request rate limiting.
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string `yaml:"type"`

	// Local LRU cache settings
	LocalMaxSize int           `yaml:"localMaxSize"`
	LocalTTL     time.Duration `yaml:"localTtl"`

	// Redis settings
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDb"`

	// Two-phase settings
	EnableTwoPhase bool `yaml:"enableTwoPhase"` // If true, check local first, then Redis
}
