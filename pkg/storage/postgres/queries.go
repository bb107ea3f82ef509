package postgres

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/chris/energy-vault/pkg/models"
)

// Amounts are selected as text and written as strings so NUMERIC values round-trip exactly.

func selectVault(customerID string) sq.SelectBuilder {
	return psql.Select(
		"customer_id", "total_credits::text", "available_credits::text", "consumed_credits::text",
		"expired_credits::text", "last_updated", "version",
	).From("vaults").Where(sq.Eq{"customer_id": customerID})
}

func selectCredits(customerID string) sq.SelectBuilder {
	return psql.Select(
		"id", "customer_id", "amount::text", "source", "description", "status",
		"issued_at", "consumed_at", "expired_at", "invoice_id", "parent_id",
	).From("credits").Where(sq.Eq{"customer_id": customerID}).OrderBy("issued_at", "id")
}

func selectTransactions(customerID string) sq.SelectBuilder {
	return psql.Select(
		"id", "customer_id", "sequence", "type", "reason", "amount::text", "description", "ts", "invoice_id", "reference",
	).From("energy_transactions").Where(sq.Eq{"customer_id": customerID}).OrderBy("sequence", "id")
}

func selectVersionForUpdate(customerID string) sq.SelectBuilder {
	return psql.Select("version").From("vaults").Where(sq.Eq{"customer_id": customerID}).Suffix("FOR UPDATE")
}

func insertVault(v models.EnergyVault) sq.InsertBuilder {
	return psql.Insert("vaults").
		Columns("customer_id", "total_credits", "available_credits", "consumed_credits", "expired_credits", "last_updated", "version").
		Values(v.CustomerID, v.TotalCredits.String(), v.AvailableCredits.String(), v.ConsumedCredits.String(),
			v.ExpiredCredits.String(), v.LastUpdated, v.Version).
		Suffix("ON CONFLICT (customer_id) DO NOTHING")
}

// updateVault only matches the row while it still carries the expected version.
func updateVault(v models.EnergyVault, expected int64) sq.UpdateBuilder {
	return psql.Update("vaults").
		Set("total_credits", v.TotalCredits.String()).
		Set("available_credits", v.AvailableCredits.String()).
		Set("consumed_credits", v.ConsumedCredits.String()).
		Set("expired_credits", v.ExpiredCredits.String()).
		Set("last_updated", v.LastUpdated).
		Set("version", v.Version).
		Where(sq.Eq{"customer_id": v.CustomerID}).
		Where(sq.Eq{"version": expected})
}

func upsertCredits(credits []models.EnergyCredit) sq.InsertBuilder {
	b := psql.Insert("credits").Columns(
		"id", "customer_id", "amount", "source", "description", "status",
		"issued_at", "consumed_at", "expired_at", "invoice_id", "parent_id",
	)
	for _, c := range credits {
		b = b.Values(c.ID, c.CustomerID, c.Amount.String(), string(c.Source), c.Description, string(c.Status),
			c.IssuedAt, c.ConsumedAt, c.ExpiredAt, c.InvoiceID, c.ParentID)
	}
	return b.Suffix(`ON CONFLICT (id) DO UPDATE SET
		amount = EXCLUDED.amount,
		status = EXCLUDED.status,
		consumed_at = EXCLUDED.consumed_at,
		expired_at = EXCLUDED.expired_at,
		invoice_id = EXCLUDED.invoice_id`)
}

func insertTransactions(txs []models.EnergyTransaction) sq.InsertBuilder {
	b := psql.Insert("energy_transactions").
		Columns("id", "customer_id", "sequence", "type", "reason", "amount", "description", "ts", "invoice_id", "reference")
	for _, t := range txs {
		b = b.Values(t.ID, t.CustomerID, t.Sequence, string(t.Type), string(t.Reason), t.Amount.String(),
			t.Description, t.Timestamp, t.InvoiceID, t.Reference)
	}
	return b
}
