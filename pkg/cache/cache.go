package cache

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceCache caches each customer's available balance, tagged with the vault
// version it was computed from. Implementations keep the entry with the highest
// version, so writes racing across processes cannot roll a balance back.
type BalanceCache interface {
	// GetBalance reports ok=false on a miss.
	GetBalance(ctx context.Context, customerID string) (balance decimal.Decimal, ok bool, err error)
	// SetBalance stores balance unless an equal or newer version is already cached.
	SetBalance(ctx context.Context, customerID string, balance decimal.Decimal, version int64) error
	// InvalidateBalance drops the balance and refuses later writes older than version.
	InvalidateBalance(ctx context.Context, customerID string, version int64) error
}

// NoOp is a BalanceCache that never stores anything.
type NoOp struct{}

// GetBalance always misses.
func (NoOp) GetBalance(ctx context.Context, customerID string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

// SetBalance does nothing.
func (NoOp) SetBalance(ctx context.Context, customerID string, balance decimal.Decimal, version int64) error {
	return nil
}

// InvalidateBalance does nothing.
func (NoOp) InvalidateBalance(ctx context.Context, customerID string, version int64) error {
	return nil
}
