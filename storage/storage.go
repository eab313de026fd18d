// Package storage provides persistence backends for launcher settings stores.
// Every backend applies a launcherprefs.Batch atomically.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/CreativeUnicorns/launcherprefs"
)

var (
	_ launcherprefs.Storage = (*MemoryStorage)(nil)
	_ launcherprefs.Storage = (*SQLiteStorage)(nil)
	_ launcherprefs.Storage = (*PostgresStorage)(nil)
)

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the backend named by driver. dsn is the SQLite file path or the
// PostgreSQL connection string; it is ignored for the memory backend.
func Open(driver, dsn string) (launcherprefs.Storage, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStorage(), nil
	case DriverSQLite:
		return NewSQLiteStorage(dsn)
	case DriverPostgres:
		return NewPostgresStorage(dsn)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", launcherprefs.ErrInvalidInput, driver)
	}
}

// loadRows reads (key, value) rows into a snapshot map and closes rows.
func loadRows(rows *sql.Rows) (map[string]json.RawMessage, error) {
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		out[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}
	return out, nil
}

// commitBatch applies batch inside one SQL transaction. Puts are written in
// key order so statements are deterministic.
func commitBatch(ctx context.Context, db *sql.DB, store launcherprefs.StoreID, batch launcherprefs.Batch, upsertSQL, deleteSQL string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for _, key := range batch.Delete {
		if _, err := tx.ExecContext(ctx, deleteSQL, string(store), key); err != nil {
			return fmt.Errorf("failed to delete setting %q: %w", key, err)
		}
	}

	keys := make([]string, 0, len(batch.Put))
	for key := range batch.Put {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, upsertSQL, string(store), key, string(batch.Put[key])); err != nil {
			return fmt.Errorf("failed to write setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
