package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LoadLedger reads the ledger inside a read-only repeatable-read transaction, so the
// vault, credits and transactions come from one snapshot.
func (s *Store) LoadLedger(ctx context.Context, customerID string) (*models.Ledger, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	vault, err := s.loadVault(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	credits, err := s.loadCredits(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.loadTransactions(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	return &models.Ledger{Vault: vault, Credits: credits, Transactions: txs}, nil
}

// ListCustomers returns every customer with a vault.
func (s *Store) ListCustomers(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("customer_id").From("vaults").OrderBy("customer_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("SQL error", "error", err, "query", query)
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}
	return ids, nil
}

// CommitMutation locks the vault row, checks the version and writes everything in one transaction.
func (s *Store) CommitMutation(ctx context.Context, m *models.Mutation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current int64
	exists := true
	query, args, err := selectVersionForUpdate(m.CustomerID).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if err := tx.QueryRow(ctx, query, args...).Scan(&current); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock vault: %w", err)
		}
		exists = false
	}
	if current != m.ExpectedVersion {
		return storage.ErrConcurrencyConflict
	}

	vault := m.Vault
	vault.CustomerID = m.CustomerID
	var vaultStmt sq.Sqlizer = updateVault(vault, m.ExpectedVersion)
	if !exists {
		vaultStmt = insertVault(vault)
	}
	affected, err := s.exec(ctx, tx, vaultStmt)
	if err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	// A concurrent insert of a new vault wins the ON CONFLICT race.
	if affected == 0 {
		return storage.ErrConcurrencyConflict
	}

	if len(m.PutCredits) > 0 {
		if _, err := s.exec(ctx, tx, upsertCredits(m.PutCredits)); err != nil {
			return fmt.Errorf("failed to write credits: %w", err)
		}
	}
	if len(m.Append) > 0 {
		if _, err := s.exec(ctx, tx, insertTransactions(m.Append)); err != nil {
			return fmt.Errorf("failed to append transactions: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, tx pgx.Tx, stmt sq.Sqlizer) (int64, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		s.logger.Error("SQL error", "error", err, "query", query)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) loadVault(ctx context.Context, tx pgx.Tx, customerID string) (models.EnergyVault, error) {
	query, args, err := selectVault(customerID).ToSql()
	if err != nil {
		return models.EnergyVault{}, fmt.Errorf("failed to build query: %w", err)
	}

	var v models.EnergyVault
	var total, available, consumed, expired string
	err = tx.QueryRow(ctx, query, args...).Scan(&v.CustomerID, &total, &available, &consumed, &expired, &v.LastUpdated, &v.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EnergyVault{CustomerID: customerID}, nil
	}
	if err != nil {
		return models.EnergyVault{}, fmt.Errorf("failed to load vault: %w", err)
	}

	for _, f := range []struct {
		dst *decimal.Decimal
		raw string
	}{{&v.TotalCredits, total}, {&v.AvailableCredits, available}, {&v.ConsumedCredits, consumed}, {&v.ExpiredCredits, expired}} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return models.EnergyVault{}, fmt.Errorf("vault %s: invalid amount %q: %w", customerID, f.raw, err)
		}
	}
	return v, nil
}

func (s *Store) loadCredits(ctx context.Context, tx pgx.Tx, customerID string) ([]models.EnergyCredit, error) {
	query, args, err := selectCredits(customerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load credits: %w", err)
	}
	defer rows.Close()

	var credits []models.EnergyCredit
	for rows.Next() {
		var c models.EnergyCredit
		var amount string
		if err := rows.Scan(&c.ID, &c.CustomerID, &amount, &c.Source, &c.Description, &c.Status,
			&c.IssuedAt, &c.ConsumedAt, &c.ExpiredAt, &c.InvoiceID, &c.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan credit: %w", err)
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("credit %s: invalid amount %q: %w", c.ID, amount, err)
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credits: %w", err)
	}
	return credits, nil
}

func (s *Store) loadTransactions(ctx context.Context, tx pgx.Tx, customerID string) ([]models.EnergyTransaction, error) {
	query, args, err := selectTransactions(customerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.EnergyTransaction
	for rows.Next() {
		var t models.EnergyTransaction
		var amount string
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Sequence, &t.Type, &t.Reason, &amount,
			&t.Description, &t.Timestamp, &t.InvoiceID, &t.Reference); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: invalid amount %q: %w", t.ID, amount, err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}
