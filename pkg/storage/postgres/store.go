// Package postgres implements the credit ledger on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS vaults (
	customer_id       TEXT PRIMARY KEY,
	total_credits     NUMERIC NOT NULL DEFAULT 0,
	available_credits NUMERIC NOT NULL DEFAULT 0,
	consumed_credits  NUMERIC NOT NULL DEFAULT 0,
	expired_credits   NUMERIC NOT NULL DEFAULT 0,
	last_updated      TIMESTAMPTZ NOT NULL,
	version           BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS credits (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES vaults (customer_id),
	amount      NUMERIC NOT NULL CHECK (amount >= 0),
	source      TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	issued_at   TIMESTAMPTZ NOT NULL,
	consumed_at TIMESTAMPTZ,
	expired_at  TIMESTAMPTZ,
	invoice_id  TEXT NOT NULL DEFAULT '',
	parent_id   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS credits_customer_issued_idx ON credits (customer_id, issued_at);

CREATE TABLE IF NOT EXISTS energy_transactions (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES vaults (customer_id),
	sequence    BIGINT NOT NULL,
	type        TEXT NOT NULL,
	reason      TEXT NOT NULL,
	amount      NUMERIC NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	ts          TIMESTAMPTZ NOT NULL,
	invoice_id  TEXT NOT NULL DEFAULT '',
	reference   TEXT NOT NULL DEFAULT ''
);
ALTER TABLE energy_transactions ADD COLUMN IF NOT EXISTS reference TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS energy_transactions_customer_seq_idx ON energy_transactions (customer_id, sequence);

CREATE TABLE IF NOT EXISTS websocket_connections (
	connection_id TEXT PRIMARY KEY,
	connected_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// psql builds statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store implements storage.CreditStore and storage.ConnectionRegistry on a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Make sure we conform to the interfaces
var (
	_ storage.CreditStore        = (*Store)(nil)
	_ storage.ConnectionRegistry = (*Store)(nil)
)

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return New(pool, logger), nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
