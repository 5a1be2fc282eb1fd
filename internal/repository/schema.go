package repository

// Schema definitions for the Redline identifier store.
// Compatible with both SQLite and PostgreSQL.

// schemaPIDRecords defines the append-only persistent-identifier table.
// Records are inserted once and never updated or deleted; handles are
// fresh UUIDs per insert, so the primary key cannot conflict.
const schemaPIDRecords = `
CREATE TABLE IF NOT EXISTS pid_records (
    handle TEXT PRIMARY KEY,
    uri TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    metadata TEXT,
    content_hash TEXT NOT NULL,
    parent_pid TEXT,
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pid_records_parent ON pid_records(parent_pid);
CREATE INDEX IF NOT EXISTS idx_pid_records_created ON pid_records(created_at);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaPIDRecords,
	}
}
