package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// URI scheme for legal resources and persistent identifiers.
const (
	SchemePrefix = "legal://"
	PIDPrefix    = "legal://pid/"
)

// IsPID reports whether a string value is a persistent-identifier URI
// rather than a raw literal.
func IsPID(s string) bool {
	return strings.HasPrefix(s, PIDPrefix)
}

// HandleFromPID strips the PID prefix from a URI. Returns "" when the
// URI is not a PID.
func HandleFromPID(uri string) string {
	if !IsPID(uri) {
		return ""
	}
	return strings.TrimPrefix(uri, PIDPrefix)
}

// PIDFromHandle builds the canonical PID URI for a handle.
func PIDFromHandle(handle string) string {
	return PIDPrefix + handle
}

// PIDRecord is one entry of the append-only identifier store: an opaque
// handle mapped to a content blob plus provenance metadata. Read-only
// once created; never updated or deleted.
type PIDRecord struct {
	Handle      string            `json:"handle"`
	URI         string            `json:"uri"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ContentHash string            `json:"content_hash"`
	ParentPID   string            `json:"parent_pid,omitempty"`
	Content     json.RawMessage   `json:"content"`
}

// Store is the identifier store consumed by the resolver and the report
// publishers. Put appends a fresh record under a newly generated handle;
// handles are never reused, so concurrent writers cannot collide.
type Store interface {
	// Put publishes content with metadata and an optional parent handle
	// for provenance chaining. Returns the PID URI of the new record.
	Put(ctx context.Context, content any, metadata map[string]string, parentPID string) (string, error)

	// GetByHandle retrieves a record. Returns a NotFound error when the
	// handle resolves to nothing.
	GetByHandle(ctx context.Context, handle string) (*PIDRecord, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for store initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `yaml:"driver"`

	// SQLite specific
	SQLitePath string `yaml:"sqlitePath"`

	// PostgreSQL specific
	PostgresHost     string `yaml:"postgresHost"`
	PostgresPort     int    `yaml:"postgresPort"`
	PostgresUser     string `yaml:"postgresUser"`
	PostgresPassword string `yaml:"postgresPassword"`
	PostgresDB       string `yaml:"postgresDb"`
	PostgresSSLMode  string `yaml:"postgresSslMode"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}
