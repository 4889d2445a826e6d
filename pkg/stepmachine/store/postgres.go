package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the checkpoint to PostgreSQL. Suitable when
// the batch job runs on hosts with no durable local disk; the
// single-writer-per-key assumption still applies, the database adds no
// coordination.
type PostgresStore struct {
	pool   *pgxpool.Pool
	key    string
	mu     sync.RWMutex
	closed bool
}

// NewPostgresStore connects to the given DSN and creates the
// checkpoint table if needed. key is the location of this machine's
// record.
//
//	st, err := store.NewPostgresStore(ctx, "postgres://localhost/jobs", "nightly-import")
func NewPostgresStore(ctx context.Context, dsn, key string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &PostgresStore{pool: pool, key: key}, nil
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM checkpoints WHERE key = $1
	`, s.key).Scan(&data)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return data, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.pool.Exec(ctx, `
		INSERT INTO checkpoints (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, s.key, data); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Clean implements Store. Removing an absent record is a no-op.
func (s *PostgresStore) Clean(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.pool.Exec(ctx, `
		DELETE FROM checkpoints WHERE key = $1
	`, s.key); err != nil {
		return fmt.Errorf("clean checkpoint: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.pool.Close()
	return nil
}
