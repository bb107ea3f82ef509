package postgres

import (
	"testing"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultStatements(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := models.EnergyVault{
		CustomerID:       "cust-1",
		TotalCredits:     decimal.RequireFromString("150.5"),
		AvailableCredits: decimal.RequireFromString("100.5"),
		ConsumedCredits:  decimal.RequireFromString("50"),
		ExpiredCredits:   decimal.Zero,
		LastUpdated:      now,
		Version:          2,
	}

	t.Run("Update Checks Version", func(t *testing.T) {
		query, args, err := updateVault(v, 1).ToSql()

		require.NoError(t, err)
		assert.Contains(t, query, "UPDATE vaults SET total_credits = $1")
		assert.Contains(t, query, "version = $6 WHERE customer_id = $7 AND version = $8")
		assert.Equal(t, []interface{}{"150.5", "100.5", "50", "0", now, int64(2), "cust-1", int64(1)}, args)
	})

	t.Run("Insert Ignores Conflict", func(t *testing.T) {
		query, args, err := insertVault(v).ToSql()

		require.NoError(t, err)
		assert.Contains(t, query, "INSERT INTO vaults")
		assert.Contains(t, query, "ON CONFLICT (customer_id) DO NOTHING")
		assert.Len(t, args, 7)
	})

	t.Run("Lock", func(t *testing.T) {
		query, args, err := selectVersionForUpdate("cust-1").ToSql()

		require.NoError(t, err)
		assert.Equal(t, "SELECT version FROM vaults WHERE customer_id = $1 FOR UPDATE", query)
		assert.Equal(t, []interface{}{"cust-1"}, args)
	})
}

func TestCreditStatements(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	credits := []models.EnergyCredit{
		{ID: "c1", CustomerID: "cust-1", Amount: decimal.RequireFromString("50"), Source: models.SourcePurchase, Status: models.CONSUMED, IssuedAt: now, ConsumedAt: &now, InvoiceID: "inv_1"},
		{ID: "c2", CustomerID: "cust-1", Amount: decimal.RequireFromString("100.5"), Source: models.SourcePurchase, Status: models.ACTIVE, IssuedAt: now, ParentID: "c1"},
	}

	query, args, err := upsertCredits(credits).ToSql()

	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO credits")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")
	assert.Contains(t, query, "$22")
	require.Len(t, args, 22)
	assert.Equal(t, "50", args[2])
	assert.Equal(t, "consumed", args[5])
	assert.Equal(t, "100.5", args[13])
	assert.Equal(t, "c1", args[21])
}

func TestSelectStatements(t *testing.T) {
	query, _, err := selectCredits("cust-1").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "amount::text")
	assert.Contains(t, query, "ORDER BY issued_at, id")

	query, _, err = selectTransactions("cust-1").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "FROM energy_transactions WHERE customer_id = $1 ORDER BY sequence, id")

	txs := []models.EnergyTransaction{{ID: "t1", CustomerID: "cust-1", Sequence: 1, Type: models.DEBIT, Amount: decimal.RequireFromString("1.5"), Reference: "ref-1"}}
	query, args, err := insertTransactions(txs).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO energy_transactions")
	assert.Equal(t, "debit", args[3])
	assert.Equal(t, "1.5", args[5])
	assert.Equal(t, "ref-1", args[9])
}
