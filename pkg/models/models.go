package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditSource describes where a credit's kWh came from.
type CreditSource string

const (
	SourceSolarGeneration CreditSource = "solar_generation"
	SourcePurchase        CreditSource = "purchase"
	SourceCompensation    CreditSource = "compensation"
)

// Valid reports whether s is a known credit source.
func (s CreditSource) Valid() bool {
	switch s {
	case SourceSolarGeneration, SourcePurchase, SourceCompensation:
		return true
	}
	return false
}

// CreditStatus defines the lifecycle states of a credit.
type CreditStatus string

const (
	ACTIVE   CreditStatus = "active"
	CONSUMED CreditStatus = "consumed"
	EXPIRED  CreditStatus = "expired"
)

// Valid reports whether s is a known credit status.
func (s CreditStatus) Valid() bool {
	switch s {
	case ACTIVE, CONSUMED, EXPIRED:
		return true
	}
	return false
}

// EnergyCredit is a single issuance of kWh credit for a customer.
type EnergyCredit struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Source      CreditSource    `json:"source"`
	Description string          `json:"description"`
	Status      CreditStatus    `json:"status"`
	IssuedAt    time.Time       `json:"issued_at"`
	ConsumedAt  *time.Time      `json:"consumed_at,omitempty"`
	ExpiredAt   *time.Time      `json:"expired_at,omitempty"`
	InvoiceID   string          `json:"invoice_id,omitempty"`
	// ParentID is set on the active remainder left behind when a credit is split.
	ParentID string `json:"parent_id,omitempty"`
}

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	CREDIT TransactionType = "credit"
	DEBIT  TransactionType = "debit"
)

// TransactionReason records which ledger operation produced a transaction.
type TransactionReason string

const (
	ReasonIssue       TransactionReason = "issue"
	ReasonConsumption TransactionReason = "consumption"
	// ReasonPartialConsumption marks one batch of an invoice too large for a single commit.
	ReasonPartialConsumption TransactionReason = "partial_consumption"
	ReasonExpiry             TransactionReason = "expiry"
)

// EnergyTransaction is an immutable entry in a customer's ledger.
type EnergyTransaction struct {
	ID          string            `json:"id"`
	CustomerID  string            `json:"customer_id"`
	Sequence    int64             `json:"sequence"`
	Type        TransactionType   `json:"type"`
	Reason      TransactionReason `json:"reason"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	InvoiceID   string            `json:"invoice_id,omitempty"`
	// Reference is the caller's idempotency key for an issuance.
	Reference string `json:"reference,omitempty"`
}

// Signed returns the transaction amount with debits negated.
func (t EnergyTransaction) Signed() decimal.Decimal {
	if t.Type == DEBIT {
		return t.Amount.Neg()
	}
	return t.Amount
}

// EnergyVault is the per-customer aggregate over credits and transactions.
type EnergyVault struct {
	CustomerID       string              `json:"customer_id"`
	TotalCredits     decimal.Decimal     `json:"total_credits"`
	AvailableCredits decimal.Decimal     `json:"available_credits"`
	ConsumedCredits  decimal.Decimal     `json:"consumed_credits"`
	ExpiredCredits   decimal.Decimal     `json:"expired_credits"`
	LastUpdated      time.Time           `json:"last_updated"`
	Version          int64               `json:"version"`
	Transactions     []EnergyTransaction `json:"transactions,omitempty"`
}

// Balanced reports whether total equals available plus consumed plus expired.
func (v EnergyVault) Balanced() bool {
	return v.TotalCredits.Equal(v.AvailableCredits.Add(v.ConsumedCredits).Add(v.ExpiredCredits))
}

// Ledger is a consistent snapshot of everything stored for one customer.
type Ledger struct {
	Vault        EnergyVault
	Credits      []EnergyCredit
	Transactions []EnergyTransaction
}

// Mutation is the unit of atomic change for one customer's ledger.
// Stores apply it only if the stored vault version still equals ExpectedVersion.
type Mutation struct {
	CustomerID      string
	ExpectedVersion int64
	Vault           EnergyVault
	PutCredits      []EnergyCredit
	Append          []EnergyTransaction
}
