package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

// PostgresStore is the durable tier used in deployments that already run the
// platform database. Records are stored as a JSONB payload keyed by the
// recipient hash; the upsert keeps writes idempotent under retries.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing database handle and ensures the
// rejection table exists.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS draft_rejections (
			recipient_key TEXT PRIMARY KEY,
			record        JSONB NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM draft_rejections WHERE recipient_key = $1`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO draft_rejections (recipient_key, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (recipient_key)
		DO UPDATE SET record = EXCLUDED.record, updated_at = NOW()`,
		key, data)
	return err
}

func (s *PostgresStore) Name() string { return "postgres" }
