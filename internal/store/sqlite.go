package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// record is a single row of the kv table.
type record struct {
	Collection string    `db:"collection"`
	Key        string    `db:"key"`
	Value      []byte    `db:"value"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	if dbPath == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Get returns the value stored under collection/key.
func (s *SQLiteStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var rec record
	err := s.db.GetContext(ctx, &rec,
		"SELECT collection, key, value, updated_at FROM kv WHERE collection = ? AND key = ?",
		collection, key,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, key, err)
	}
	return rec.Value, nil
}

// Set inserts or replaces the value stored under collection/key.
func (s *SQLiteStore) Set(ctx context.Context, collection, key string, value []byte) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO kv (collection, key, value, updated_at)
		VALUES (:collection, :key, :value, :updated_at)
		ON CONFLICT(collection, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		record{
			Collection: collection,
			Key:        key,
			Value:      value,
			UpdatedAt:  time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, key, err)
	}
	return nil
}

// Remove deletes collection/key. Removing a missing key is not an error.
func (s *SQLiteStore) Remove(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM kv WHERE collection = ? AND key = ?", collection, key,
	)
	if err != nil {
		return fmt.Errorf("removing %s/%s: %w", collection, key, err)
	}
	return nil
}
