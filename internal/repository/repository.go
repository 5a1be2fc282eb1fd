// Package repository persists identifier-store records.
package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joy7758/redline/internal/domain"
)

// SQLStore implements domain.Store using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// New creates a new identifier store based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Store, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	store := &SQLStore{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLStore) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := s.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// Put appends a record under a freshly generated handle and returns its
// PID URI. The content hash is computed over the canonical JSON encoding,
// so two identical payloads carry the same hash under distinct handles.
func (s *SQLStore) Put(ctx context.Context, content any, metadata map[string]string, parentPID string) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to encode content: %w", err)
	}

	sum := sha256.Sum256(raw)

	handle := uuid.NewString()
	uri := domain.PIDFromHandle(handle)

	meta, _ := json.Marshal(metadata)

	query := `
		INSERT INTO pid_records (
			handle, uri, created_at, metadata, content_hash, parent_pid, content
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, s.rebind(query),
		handle, uri, time.Now().UTC(),
		string(meta), hex.EncodeToString(sum[:]), parentPID, string(raw),
	)
	if err != nil {
		return "", err
	}

	return uri, nil
}

// GetByHandle retrieves a record by its opaque handle.
func (s *SQLStore) GetByHandle(ctx context.Context, handle string) (*domain.PIDRecord, error) {
	query := `
		SELECT handle, uri, created_at, metadata, content_hash, parent_pid, content
		FROM pid_records
		WHERE handle = ?
	`

	var rec domain.PIDRecord
	var metadata, content string

	err := s.db.QueryRowContext(ctx, s.rebind(query), handle).Scan(
		&rec.Handle, &rec.URI, &rec.CreatedAt,
		&metadata, &rec.ContentHash, &rec.ParentPID, &content,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFound("unknown handle: " + handle)
	}
	if err != nil {
		return nil, err
	}

	if metadata != "" {
		json.Unmarshal([]byte(metadata), &rec.Metadata)
	}
	rec.Content = json.RawMessage(content)

	return &rec, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
