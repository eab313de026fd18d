package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/launcherprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS launcher_settings (
			store_id TEXT NOT NULL,
			key TEXT NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (store_id, key)
		);
	`

	upsertSQL = `
		INSERT INTO launcher_settings (store_id, key, value, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (store_id, key)
		DO UPDATE SET value = $3, updated_at = CURRENT_TIMESTAMP
	`

	selectStoreSQL = `
		SELECT key, value
		FROM launcher_settings
		WHERE store_id = $1
	`

	deleteSQL = `
		DELETE FROM launcher_settings
		WHERE store_id = $1 AND key = $2
	`
)

// PostgresStorage persists stores in PostgreSQL, one JSONB row per key.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects using connString and runs migrations.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Load returns the persisted values of store.
func (s *PostgresStorage) Load(ctx context.Context, store launcherprefs.StoreID) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, selectStoreSQL, string(store))
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query settings of store '%s': %w", store, err)
	}
	values, err := loadRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return values, nil
}

// Commit applies batch to store in one PostgreSQL transaction.
func (s *PostgresStorage) Commit(ctx context.Context, store launcherprefs.StoreID, batch launcherprefs.Batch) error {
	if err := commitBatch(ctx, s.db, store, batch, upsertSQL, deleteSQL); err != nil {
		return fmt.Errorf("postgres: store '%s': %w", store, err)
	}
	return nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
