package ledger

import (
	"context"
	"fmt"

	"github.com/chris/energy-vault/pkg/models"
)

// VerifyReport compares the stored vault against its two independent derivations.
type VerifyReport struct {
	CustomerID string   `json:"customer_id"`
	Version    int64    `json:"version"`
	Stored     Totals   `json:"stored"`
	Replayed   Totals   `json:"replayed"`
	Derived    Totals   `json:"derived"`
	Consistent bool     `json:"consistent"`
	Problems   []string `json:"problems,omitempty"`
}

// Verify checks that the stored vault, a replay of the transaction log and the credit set all agree.
func (s *Service) Verify(ctx context.Context, customerID string) (report *VerifyReport, err error) {
	ctx, done := s.observe(ctx, "verify", customerID)
	defer func() { done(err) }()

	if err := validateIdentifier("customer_id", customerID); err != nil {
		return nil, err
	}

	l, err := s.store.LoadLedger(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return Check(l), nil
}

// Check runs the consistency checks over a ledger snapshot.
func Check(l *models.Ledger) *VerifyReport {
	txs := chronological(l.Transactions)
	r := &VerifyReport{
		CustomerID: l.Vault.CustomerID,
		Version:    l.Vault.Version,
		Stored:     TotalsOf(l.Vault),
		Replayed:   ReplayTransactions(txs),
		Derived:    DeriveFromCredits(l.Credits),
	}

	if !l.Vault.Balanced() {
		r.Problems = append(r.Problems, "stored totals do not balance")
	}
	if !r.Stored.Equal(r.Replayed) {
		r.Problems = append(r.Problems, "stored totals differ from transaction replay")
	}
	if !r.Stored.Equal(r.Derived) {
		r.Problems = append(r.Problems, "stored totals differ from credit set")
	}
	if running := RunningBalance(txs); !running.Equal(r.Stored.Available) {
		r.Problems = append(r.Problems, fmt.Sprintf("running balance %s differs from available %s", running, r.Stored.Available))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Sequence <= txs[i-1].Sequence {
			r.Problems = append(r.Problems, fmt.Sprintf("transaction %s breaks sequence order", txs[i].ID))
		}
	}
	r.Consistent = len(r.Problems) == 0
	return r
}
