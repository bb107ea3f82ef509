package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// GetAvailableBalance returns the sum of the customer's active credits, zero for unknown customers.
func (s *Service) GetAvailableBalance(ctx context.Context, customerID string) (balance decimal.Decimal, err error) {
	ctx, done := s.observe(ctx, "get_available_balance", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return decimal.Zero, err
	}

	if cached, ok, err := s.cache.GetBalance(ctx, customerID); err != nil {
		s.logger.Warn("balance cache read failed", "customerId", customerID, "error", err)
	} else if ok {
		return cached, nil
	}

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ledger: %w", err)
	}

	balance = availableOf(l.Credits)
	if err := s.cache.SetBalance(ctx, customerID, balance, l.Vault.Version); err != nil {
		s.logger.Warn("failed to fill cached balance", "customerId", customerID, "error", err)
	}
	return balance, nil
}

// GetVault returns the customer's vault with its full transaction history.
func (s *Service) GetVault(ctx context.Context, customerID string) (vault *models.EnergyVault, err error) {
	ctx, done := s.observe(ctx, "get_vault", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	v := l.Vault
	v.CustomerID = customerID
	v.Transactions = chronological(l.Transactions)
	return &v, nil
}

// GetTransactionHistory returns the customer's transactions oldest first.
// Each call returns a new slice.
func (s *Service) GetTransactionHistory(ctx context.Context, customerID string) (txs []models.EnergyTransaction, err error) {
	ctx, done := s.observe(ctx, "get_transaction_history", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return chronological(l.Transactions), nil
}

// ListCredits returns the customer's credits oldest first, optionally filtered by status.
func (s *Service) ListCredits(ctx context.Context, customerID string, status models.CreditStatus) (credits []models.EnergyCredit, err error) {
	ctx, done := s.observe(ctx, "list_credits", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid(ErrInvalidIdentifier, "status", fmt.Sprintf("unknown status %q", status))
	}

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	credits = make([]models.EnergyCredit, 0, len(l.Credits))
	for _, c := range l.Credits {
		if status == "" || c.Status == status {
			credits = append(credits, c)
		}
	}
	sort.SliceStable(credits, func(i, j int) bool {
		return credits[i].IssuedAt.Before(credits[j].IssuedAt)
	})
	return credits, nil
}

// ListCustomers returns every customer with a vault.
func (s *Service) ListCustomers(ctx context.Context) ([]string, error) {
	ids, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return ids, nil
}

func chronological(txs []models.EnergyTransaction) []models.EnergyTransaction {
	out := make([]models.EnergyTransaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}
