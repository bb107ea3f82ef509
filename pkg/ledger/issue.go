package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// IssueRequest describes a new credit.
type IssueRequest struct {
	CustomerID  string
	Amount      decimal.Decimal
	Source      models.CreditSource
	Description string
	// Reference, when set, makes the issuance idempotent: a second request with the
	// same reference fails with ErrDuplicateIssue and leaves the vault untouched.
	Reference string
}

func (r IssueRequest) validate() error {
	if err := validateIdentifier("customer_id", r.CustomerID); err != nil {
		return err
	}
	if err := validatePositive("amount", r.Amount); err != nil {
		return err
	}
	if !r.Source.Valid() {
		return invalid(ErrInvalidSource, "source", fmt.Sprintf("unknown source %q", r.Source))
	}
	if r.Reference != "" {
		if err := validateIdentifier("reference", r.Reference); err != nil {
			return err
		}
	}
	return nil
}

// IssueCredit creates an active credit and the matching credit transaction.
// Customers are created implicitly on their first issuance.
func (s *Service) IssueCredit(ctx context.Context, req IssueRequest) (credit *models.EnergyCredit, err error) {
	ctx, done := s.observe(ctx, "issue_credit", req.CustomerID)
	defer func() { done(err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, req.CustomerID, func(l *models.Ledger, now time.Time) (*models.Mutation, error) {
		if issuedFor(l, req.Reference) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIssue, req.Reference)
		}

		vault := nextVault(l, req.CustomerID, now)
		vault.TotalCredits = vault.TotalCredits.Add(req.Amount)
		vault.AvailableCredits = vault.AvailableCredits.Add(req.Amount)

		c := models.EnergyCredit{
			ID:          s.newID(),
			CustomerID:  req.CustomerID,
			Amount:      req.Amount,
			Source:      req.Source,
			Description: req.Description,
			Status:      models.ACTIVE,
			IssuedAt:    now,
		}
		tx := models.EnergyTransaction{
			ID:          s.newID(),
			CustomerID:  req.CustomerID,
			Sequence:    vault.Version,
			Type:        models.CREDIT,
			Reason:      models.ReasonIssue,
			Amount:      req.Amount,
			Description: req.Description,
			Timestamp:   now,
			Reference:   req.Reference,
		}
		credit = &c

		return &models.Mutation{
			CustomerID:      req.CustomerID,
			ExpectedVersion: l.Vault.Version,
			Vault:           vault,
			PutCredits:      []models.EnergyCredit{c},
			Append:          []models.EnergyTransaction{tx},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	creditsIssuedKWh.WithLabelValues(string(req.Source)).Add(req.Amount.InexactFloat64())
	s.logger.Info("credit issued",
		"customerId", req.CustomerID,
		"creditId", credit.ID,
		"amount", req.Amount.String(),
		"source", req.Source,
	)
	return credit, nil
}

func issuedFor(l *models.Ledger, reference string) bool {
	if reference == "" {
		return false
	}
	for _, tx := range l.Transactions {
		if tx.Reason == models.ReasonIssue && tx.Reference == reference {
			return true
		}
	}
	return false
}
