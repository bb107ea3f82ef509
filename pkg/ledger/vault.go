package ledger

import (
	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
)

// Totals are the four aggregate figures of a vault.
type Totals struct {
	Total     decimal.Decimal `json:"total_credits"`
	Available decimal.Decimal `json:"available_credits"`
	Consumed  decimal.Decimal `json:"consumed_credits"`
	Expired   decimal.Decimal `json:"expired_credits"`
}

// Equal compares totals numerically.
func (t Totals) Equal(o Totals) bool {
	return t.Total.Equal(o.Total) &&
		t.Available.Equal(o.Available) &&
		t.Consumed.Equal(o.Consumed) &&
		t.Expired.Equal(o.Expired)
}

// TotalsOf extracts the aggregate figures of a vault.
func TotalsOf(v models.EnergyVault) Totals {
	return Totals{
		Total:     v.TotalCredits,
		Available: v.AvailableCredits,
		Consumed:  v.ConsumedCredits,
		Expired:   v.ExpiredCredits,
	}
}

// ReplayTransactions rebuilds vault totals from an empty state by applying every transaction in order.
func ReplayTransactions(txs []models.EnergyTransaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch {
		case tx.Type == models.CREDIT:
			t.Total = t.Total.Add(tx.Amount)
			t.Available = t.Available.Add(tx.Amount)
		case tx.Reason == models.ReasonExpiry:
			t.Available = t.Available.Sub(tx.Amount)
			t.Expired = t.Expired.Add(tx.Amount)
		default:
			t.Available = t.Available.Sub(tx.Amount)
			t.Consumed = t.Consumed.Add(tx.Amount)
		}
	}
	return t
}

// DeriveFromCredits computes vault totals from the credit set alone.
// Split credits contribute both pieces, so Total still equals everything ever issued.
func DeriveFromCredits(credits []models.EnergyCredit) Totals {
	var t Totals
	for _, c := range credits {
		t.Total = t.Total.Add(c.Amount)
		switch c.Status {
		case models.ACTIVE:
			t.Available = t.Available.Add(c.Amount)
		case models.CONSUMED:
			t.Consumed = t.Consumed.Add(c.Amount)
		case models.EXPIRED:
			t.Expired = t.Expired.Add(c.Amount)
		}
	}
	return t
}

// RunningBalance is the signed sum of all transactions.
func RunningBalance(txs []models.EnergyTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Signed())
	}
	return sum
}

func availableOf(credits []models.EnergyCredit) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range credits {
		if c.Status == models.ACTIVE {
			sum = sum.Add(c.Amount)
		}
	}
	return sum
}
