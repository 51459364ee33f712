// Package storage persists the project index in SQLite: analyzed files, their
// symbols, cross-references, relationships and the history of index runs.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written to index_metadata when the schema is created.
const SchemaVersion = "1"

// Open opens (creating if needed) the index database at dbPath and ensures
// the schema exists.
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// CreateSchema creates all tables and indexes in one transaction and
// bootstraps index_metadata.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"refs", createRefsTable},
		{"relationships", createRelationshipsTable},
		{"index_runs", createIndexRunsTable},
		{"index_metadata", createIndexMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO index_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap index_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a database
// without the schema.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='index_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check index_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM index_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in index_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE files (
    file_path TEXT PRIMARY KEY,               -- relative path from project root
    file_hash TEXT NOT NULL,                  -- SHA-256 of the normalized content
    line_count INTEGER NOT NULL DEFAULT 0,
    symbol_count INTEGER NOT NULL DEFAULT 0,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL                  -- ISO 8601
)
`

const createSymbolsTable = `
CREATE TABLE symbols (
    id TEXT PRIMARY KEY,                      -- UUID
    file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    visibility TEXT NOT NULL,
    line INTEGER NOT NULL,                    -- 0-based
    end_line INTEGER NOT NULL,
    signature TEXT NOT NULL DEFAULT '',
    doc TEXT NOT NULL DEFAULT '',
    why TEXT NOT NULL DEFAULT '',
    how TEXT NOT NULL DEFAULT '',
    pattern TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL                        -- full symbol as JSON
)
`

const createRefsTable = `
CREATE TABLE refs (
    file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    name TEXT NOT NULL,
    line INTEGER NOT NULL,
    PRIMARY KEY (file_path, name, line)
)
`

const createRelationshipsTable = `
CREATE TABLE relationships (
    id TEXT PRIMARY KEY,                      -- UUID
    file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
    from_name TEXT NOT NULL,
    from_kind TEXT NOT NULL,
    relation TEXT NOT NULL,                   -- implements, uses, implemented by, ...
    to_name TEXT NOT NULL
)
`

const createIndexRunsTable = `
CREATE TABLE index_runs (
    id TEXT PRIMARY KEY,                      -- UUID
    started_at TEXT NOT NULL,
    finished_at TEXT,
    files_indexed INTEGER NOT NULL DEFAULT 0,
    files_skipped INTEGER NOT NULL DEFAULT 0,
    files_removed INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
)
`

const createIndexMetadataTable = `
CREATE TABLE index_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var indexes = []string{
	"CREATE INDEX idx_symbols_name ON symbols(name)",
	"CREATE INDEX idx_symbols_kind ON symbols(kind)",
	"CREATE INDEX idx_symbols_file ON symbols(file_path)",
	"CREATE INDEX idx_refs_name ON refs(name)",
	"CREATE INDEX idx_relationships_from ON relationships(from_name)",
	"CREATE INDEX idx_relationships_to ON relationships(to_name)",
}
