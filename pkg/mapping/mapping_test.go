package mapping

import (
	"testing"
	"time"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToApiConsumption(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	consumed := models.EnergyCredit{
		ID: "c1", CustomerID: "joao", Amount: decimal.RequireFromString("50"),
		Source: models.SourceSolarGeneration, Status: models.CONSUMED, IssuedAt: now, ConsumedAt: &now, InvoiceID: "inv_1",
	}
	remainder := models.EnergyCredit{
		ID: "c2", CustomerID: "joao", Amount: decimal.RequireFromString("100.5"),
		Source: models.SourceSolarGeneration, Status: models.ACTIVE, IssuedAt: now, ParentID: "c1",
	}

	out := ToApiConsumption(&ledger.ConsumptionResult{
		Consumed:       []models.EnergyCredit{consumed},
		Remainder:      &remainder,
		ConsumedAmount: decimal.RequireFromString("50"),
		Shortfall:      decimal.Zero,
	})

	require.Len(t, out.Consumed, 1)
	assert.Equal(t, "50", out.Consumed[0].Amount)
	assert.Equal(t, api.Consumed, out.Consumed[0].Status)
	require.NotNil(t, out.Consumed[0].InvoiceId)
	assert.Equal(t, "inv_1", *out.Consumed[0].InvoiceId)
	require.NotNil(t, out.Remainder)
	assert.Equal(t, "100.5", out.Remainder.Amount)
	require.NotNil(t, out.Remainder.ParentId)
	assert.Equal(t, "c1", *out.Remainder.ParentId)
	assert.Nil(t, out.Remainder.InvoiceId)
	assert.Equal(t, "0", out.Shortfall)
	assert.Nil(t, out.Transaction)
}

func TestToApiVault(t *testing.T) {
	v := &models.EnergyVault{
		CustomerID:       "joao",
		TotalCredits:     decimal.RequireFromString("150.5"),
		AvailableCredits: decimal.RequireFromString("100.5"),
		ConsumedCredits:  decimal.RequireFromString("50"),
		Version:          2,
	}

	out := ToApiVault(v)

	assert.Equal(t, "150.5", out.TotalCredits)
	assert.Equal(t, "0", out.ExpiredCredits)
	assert.Nil(t, out.LastUpdated)
	assert.NotNil(t, out.Transactions)
	assert.Empty(t, out.Transactions)
}

func TestToDomainReading(t *testing.T) {
	body := "plant_other"
	in := &api.InverterReading{InverterId: "inv_001", PlantId: &body, Status: "online", Power: 10, Efficiency: 97}

	r := ToDomainReading("plant_alpha", in)

	assert.Equal(t, "plant_alpha", r.PlantID)
	assert.Equal(t, models.InverterOnline, r.Status)
	assert.Empty(t, r.ID)
	assert.True(t, r.Timestamp.IsZero())
}
