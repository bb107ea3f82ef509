package ledger

import (
	"context"
	"fmt"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// SampleCredit is one demo issuance, optionally consumed against an invoice right away.
type SampleCredit struct {
	IssueRequest
	ConsumedBy string
}

// SampleCredits returns the demo customers used by local development.
func SampleCredits() []SampleCredit {
	return []SampleCredit{
		{IssueRequest: IssueRequest{
			CustomerID:  "joao.silva",
			Amount:      decimal.RequireFromString("150.5"),
			Source:      models.SourceSolarGeneration,
			Description: "Geração solar - Usina Alpha",
		}},
		{IssueRequest: IssueRequest{
			CustomerID:  "maria.souza",
			Amount:      decimal.RequireFromString("89.2"),
			Source:      models.SourceSolarGeneration,
			Description: "Geração solar - Usina Beta",
		}},
		{
			IssueRequest: IssueRequest{
				CustomerID:  "carlos.lima",
				Amount:      decimal.NewFromInt(200),
				Source:      models.SourceSolarGeneration,
				Description: "Geração solar - Usina Gamma",
			},
			ConsumedBy: "inv_123456",
		},
	}
}

// Seed loads the sample customers into an empty ledger. It does nothing when any vault exists.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.store.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, sc := range SampleCredits() {
		credit, err := s.IssueCredit(ctx, sc.IssueRequest)
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", sc.CustomerID, err)
		}
		if sc.ConsumedBy == "" {
			continue
		}
		if _, err := s.ConsumeCredits(ctx, sc.CustomerID, credit.Amount, sc.ConsumedBy); err != nil {
			return fmt.Errorf("failed to seed consumption for %s: %w", sc.CustomerID, err)
		}
	}
	return nil
}
