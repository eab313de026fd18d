package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/launcherprefs"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS launcher_settings (
			store_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (store_id, key)
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO launcher_settings (store_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(store_id, key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	sqliteSelectStoreSQL = `
		SELECT key, value
		FROM launcher_settings
		WHERE store_id = ?
	`

	sqliteDeleteSQL = `
		DELETE FROM launcher_settings
		WHERE store_id = ? AND key = ?
	`
)

// SQLiteStorage persists stores in a SQLite database, one row per key.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Load returns the persisted values of store.
func (s *SQLiteStorage) Load(ctx context.Context, store launcherprefs.StoreID) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectStoreSQL, string(store))
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	return loadRows(rows)
}

// Commit applies batch to store in one SQLite transaction.
func (s *SQLiteStorage) Commit(ctx context.Context, store launcherprefs.StoreID, batch launcherprefs.Batch) error {
	return commitBatch(ctx, s.db, store, batch, sqliteUpsertSQL, sqliteDeleteSQL)
}

// Close closes the SQLite database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
