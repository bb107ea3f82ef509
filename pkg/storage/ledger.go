package storage

import (
	"context"

	"github.com/chris/energy-vault/pkg/models"
)

// LedgerReader defines the interface for reading a customer's ledger.
type LedgerReader interface {
	// LoadLedger returns a consistent snapshot of the customer's vault, credits and transactions.
	// Unknown customers yield an empty ledger with a zero-version vault, not an error.
	LoadLedger(ctx context.Context, customerID string) (*models.Ledger, error)

	// ListCustomers returns the IDs of every customer that has a vault.
	ListCustomers(ctx context.Context) ([]string, error)
}

// LedgerWriter defines the privileged interface for mutating a customer's ledger.
// Only the ledger service should hold it.
type LedgerWriter interface {
	// CommitMutation atomically applies the mutation. It returns ErrConcurrencyConflict
	// without applying anything when the stored vault version differs from
	// mutation.ExpectedVersion.
	CommitMutation(ctx context.Context, mutation *models.Mutation) error
}

//go:generate mockery --name=CreditStore --output=mocks --outpkg=mocks

// CreditStore combines the reader and writer interfaces.
type CreditStore interface {
	LedgerReader
	LedgerWriter
}
