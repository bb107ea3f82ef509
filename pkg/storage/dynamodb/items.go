package dynamodb

import (
	"fmt"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// Amounts are stored as decimal strings; attributevalue has no decimal support
// and DynamoDB numbers would be rounded by float conversion on the way back.

type vaultItem struct {
	CustomerID       string    `dynamodbav:"customer_id"`
	TotalCredits     string    `dynamodbav:"total_credits"`
	AvailableCredits string    `dynamodbav:"available_credits"`
	ConsumedCredits  string    `dynamodbav:"consumed_credits"`
	ExpiredCredits   string    `dynamodbav:"expired_credits"`
	LastUpdated      time.Time `dynamodbav:"last_updated"`
	Version          int64     `dynamodbav:"version"`
}

type creditItem struct {
	CustomerID  string     `dynamodbav:"customer_id"`
	CreditID    string     `dynamodbav:"credit_id"`
	Amount      string     `dynamodbav:"amount"`
	Source      string     `dynamodbav:"source"`
	Description string     `dynamodbav:"description"`
	Status      string     `dynamodbav:"status"`
	IssuedAt    time.Time  `dynamodbav:"issued_at"`
	ConsumedAt  *time.Time `dynamodbav:"consumed_at,omitempty"`
	ExpiredAt   *time.Time `dynamodbav:"expired_at,omitempty"`
	InvoiceID   string     `dynamodbav:"invoice_id,omitempty"`
	ParentID    string     `dynamodbav:"parent_id,omitempty"`
}

type transactionItem struct {
	CustomerID    string    `dynamodbav:"customer_id"`
	TransactionID string    `dynamodbav:"transaction_id"`
	Sequence      int64     `dynamodbav:"sequence"`
	Type          string    `dynamodbav:"type"`
	Reason        string    `dynamodbav:"reason"`
	Amount        string    `dynamodbav:"amount"`
	Description   string    `dynamodbav:"description"`
	Timestamp     time.Time `dynamodbav:"timestamp"`
	InvoiceID     string    `dynamodbav:"invoice_id,omitempty"`
	Reference     string    `dynamodbav:"reference,omitempty"`
}

func toVaultItem(v models.EnergyVault) vaultItem {
	return vaultItem{
		CustomerID:       v.CustomerID,
		TotalCredits:     v.TotalCredits.String(),
		AvailableCredits: v.AvailableCredits.String(),
		ConsumedCredits:  v.ConsumedCredits.String(),
		ExpiredCredits:   v.ExpiredCredits.String(),
		LastUpdated:      v.LastUpdated,
		Version:          v.Version,
	}
}

func (i vaultItem) toModel() (models.EnergyVault, error) {
	amounts, err := parseAmounts(i.TotalCredits, i.AvailableCredits, i.ConsumedCredits, i.ExpiredCredits)
	if err != nil {
		return models.EnergyVault{}, fmt.Errorf("vault %s: %w", i.CustomerID, err)
	}
	return models.EnergyVault{
		CustomerID:       i.CustomerID,
		TotalCredits:     amounts[0],
		AvailableCredits: amounts[1],
		ConsumedCredits:  amounts[2],
		ExpiredCredits:   amounts[3],
		LastUpdated:      i.LastUpdated,
		Version:          i.Version,
	}, nil
}

func toCreditItem(c models.EnergyCredit) creditItem {
	return creditItem{
		CustomerID:  c.CustomerID,
		CreditID:    c.ID,
		Amount:      c.Amount.String(),
		Source:      string(c.Source),
		Description: c.Description,
		Status:      string(c.Status),
		IssuedAt:    c.IssuedAt,
		ConsumedAt:  c.ConsumedAt,
		ExpiredAt:   c.ExpiredAt,
		InvoiceID:   c.InvoiceID,
		ParentID:    c.ParentID,
	}
}

func (i creditItem) toModel() (models.EnergyCredit, error) {
	amount, err := decimal.NewFromString(i.Amount)
	if err != nil {
		return models.EnergyCredit{}, fmt.Errorf("credit %s: invalid amount %q: %w", i.CreditID, i.Amount, err)
	}
	return models.EnergyCredit{
		ID:          i.CreditID,
		CustomerID:  i.CustomerID,
		Amount:      amount,
		Source:      models.CreditSource(i.Source),
		Description: i.Description,
		Status:      models.CreditStatus(i.Status),
		IssuedAt:    i.IssuedAt,
		ConsumedAt:  i.ConsumedAt,
		ExpiredAt:   i.ExpiredAt,
		InvoiceID:   i.InvoiceID,
		ParentID:    i.ParentID,
	}, nil
}

func toTransactionItem(t models.EnergyTransaction) transactionItem {
	return transactionItem{
		CustomerID:    t.CustomerID,
		TransactionID: t.ID,
		Sequence:      t.Sequence,
		Type:          string(t.Type),
		Reason:        string(t.Reason),
		Amount:        t.Amount.String(),
		Description:   t.Description,
		Timestamp:     t.Timestamp,
		InvoiceID:     t.InvoiceID,
		Reference:     t.Reference,
	}
}

func (i transactionItem) toModel() (models.EnergyTransaction, error) {
	amount, err := decimal.NewFromString(i.Amount)
	if err != nil {
		return models.EnergyTransaction{}, fmt.Errorf("transaction %s: invalid amount %q: %w", i.TransactionID, i.Amount, err)
	}
	return models.EnergyTransaction{
		ID:          i.TransactionID,
		CustomerID:  i.CustomerID,
		Sequence:    i.Sequence,
		Type:        models.TransactionType(i.Type),
		Reason:      models.TransactionReason(i.Reason),
		Amount:      amount,
		Description: i.Description,
		Timestamp:   i.Timestamp,
		InvoiceID:   i.InvoiceID,
		Reference:   i.Reference,
	}, nil
}

func parseAmounts(raw ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(raw))
	for i, r := range raw {
		d, err := decimal.NewFromString(r)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", r, err)
		}
		out[i] = d
	}
	return out, nil
}
