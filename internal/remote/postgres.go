package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const migrationBoards = `
CREATE TABLE IF NOT EXISTS boards (
    key TEXT PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore keeps boards in a PostgreSQL table
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to databaseURL and ensures the boards table exists
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	migrations := []string{
		migrationBoards,
	}
	for i, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, key string) (Document, error) {
	doc := Document{Key: key}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM boards WHERE key = $1`, key,
	).Scan(&data, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch board: %w", err)
	}
	doc.Data = json.RawMessage(data)
	return doc, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, key string, data json.RawMessage) (time.Time, error) {
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO boards (key, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
		RETURNING updated_at`,
		key, string(data),
	).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to store board: %w", err)
	}
	return updatedAt, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
