package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds how many customers ExpireAll processes at once.
const sweepConcurrency = 8

// ExpiryResult reports the credits expired for one customer.
type ExpiryResult struct {
	Expired []models.EnergyCredit
	Amount  decimal.Decimal
	// Transactions holds one expiry debit per commit, oldest first.
	Transactions []models.EnergyTransaction
}

// SweepSummary aggregates an ExpireAll run.
type SweepSummary struct {
	Customers int
	Credits   int
	Amount    decimal.Decimal
}

// ExpireCredits expires every active credit issued before cutoff. Credits are
// expired oldest first in batches that fit one commit, each recorded by its own
// expiry debit.
func (s *Service) ExpireCredits(ctx context.Context, customerID string, cutoff time.Time) (result *ExpiryResult, err error) {
	ctx, done := s.observe(ctx, "expire_credits", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}

	result = &ExpiryResult{Amount: decimal.Zero}
	for {
		var batch []models.EnergyCredit
		var amount decimal.Decimal
		var more bool

		m, err := s.mutate(ctx, customerID, func(l *models.Ledger, now time.Time) (*models.Mutation, error) {
			batch, amount, more = nil, decimal.Zero, false

			for _, c := range activeOldestFirst(l.Credits) {
				if !c.IssuedAt.Before(cutoff) {
					break
				}
				if len(batch) == maxCreditWrites {
					more = true
					break
				}
				expiredAt := now
				c.Status = models.EXPIRED
				c.ExpiredAt = &expiredAt
				batch = append(batch, c)
				amount = amount.Add(c.Amount)
			}
			if len(batch) == 0 {
				return nil, nil
			}

			vault := nextVault(l, customerID, now)
			vault.AvailableCredits = vault.AvailableCredits.Sub(amount)
			vault.ExpiredCredits = vault.ExpiredCredits.Add(amount)

			tx := models.EnergyTransaction{
				ID:          s.newID(),
				CustomerID:  customerID,
				Sequence:    vault.Version,
				Type:        models.DEBIT,
				Reason:      models.ReasonExpiry,
				Amount:      amount,
				Description: fmt.Sprintf("Expired %d credits issued before %s", len(batch), cutoff.Format(time.RFC3339)),
				Timestamp:   now,
			}

			return &models.Mutation{
				CustomerID:      customerID,
				ExpectedVersion: l.Vault.Version,
				Vault:           vault,
				PutCredits:      batch,
				Append:          []models.EnergyTransaction{tx},
			}, nil
		})
		if err != nil {
			if len(result.Expired) > 0 {
				s.logger.Warn("expiry stopped part way", "customerId", customerID, "count", len(result.Expired), "error", err)
			}
			return nil, err
		}
		if m == nil {
			break
		}

		result.Expired = append(result.Expired, batch...)
		result.Amount = result.Amount.Add(amount)
		result.Transactions = append(result.Transactions, m.Append...)
		creditsExpiredKWh.Add(amount.InexactFloat64())
		if !more {
			break
		}
	}

	if len(result.Expired) > 0 {
		s.logger.Info("credits expired",
			"customerId", customerID,
			"count", len(result.Expired),
			"commits", len(result.Transactions),
			"amount", result.Amount.String(),
		)
	}
	return result, nil
}

// ExpireAll runs ExpireCredits for every customer. A failing customer does not stop
// the sweep; all failures are joined into the returned error.
func (s *Service) ExpireAll(ctx context.Context, cutoff time.Time) (SweepSummary, error) {
	summary := SweepSummary{Amount: decimal.Zero}

	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list customers: %w", err)
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(sweepConcurrency)

	for _, customerID := range customers {
		g.Go(func() error {
			res, err := s.ExpireCredits(ctx, customerID, cutoff)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("customer %s: %w", customerID, err))
				return nil
			}
			if len(res.Expired) > 0 {
				summary.Customers++
				summary.Credits += len(res.Expired)
				summary.Amount = summary.Amount.Add(res.Amount)
			}
			return nil
		})
	}
	_ = g.Wait()

	return summary, errors.Join(errs...)
}
