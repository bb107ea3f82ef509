package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/shopspring/decimal"
)

// Issuer issues credits for generation events.
type Issuer interface {
	IssueCredit(ctx context.Context, req ledger.IssueRequest) (*models.EnergyCredit, error)
}

// Consumer consumes credits for paid invoices.
type Consumer interface {
	ConsumeCredits(ctx context.Context, customerID string, amount decimal.Decimal, invoiceID string) (*ledger.ConsumptionResult, error)
}

var (
	_ Issuer   = (*ledger.Service)(nil)
	_ Consumer = (*ledger.Service)(nil)
)

const conflictAttempts = 3

var conflictBackoff = 50 * time.Millisecond

// retryOnConflict reruns fn while another process keeps moving the vault version.
func retryOnConflict(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= conflictAttempts; attempt++ {
		if err = fn(); !errors.Is(err, storage.ErrConcurrencyConflict) {
			return err
		}
		if attempt == conflictAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * conflictBackoff):
		}
	}
	return err
}

func isValidation(err error) bool {
	var verr *ledger.ValidationError
	return errors.As(err, &verr)
}
