package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueMutation(customerID string, expected int64, creditID string, amount decimal.Decimal) *models.Mutation {
	return &models.Mutation{
		CustomerID:      customerID,
		ExpectedVersion: expected,
		Vault: models.EnergyVault{
			CustomerID:       customerID,
			TotalCredits:     amount,
			AvailableCredits: amount,
			Version:          expected + 1,
		},
		PutCredits: []models.EnergyCredit{{ID: creditID, CustomerID: customerID, Amount: amount, Status: models.ACTIVE}},
		Append:     []models.EnergyTransaction{{ID: "tx-" + creditID, CustomerID: customerID, Type: models.CREDIT, Amount: amount}},
	}
}

func TestLoadLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown Customer", func(t *testing.T) {
		store := New()
		ledger, err := store.LoadLedger(ctx, "nobody")

		require.NoError(t, err)
		assert.Equal(t, "nobody", ledger.Vault.CustomerID)
		assert.Zero(t, ledger.Vault.Version)
		assert.Empty(t, ledger.Credits)
		assert.Empty(t, ledger.Transactions)
	})

	t.Run("Returns Copies", func(t *testing.T) {
		store := New()
		require.NoError(t, store.CommitMutation(ctx, issueMutation("joao", 0, "c1", decimal.NewFromInt(10))))

		ledger, err := store.LoadLedger(ctx, "joao")
		require.NoError(t, err)
		ledger.Credits[0].Status = models.CONSUMED

		again, err := store.LoadLedger(ctx, "joao")
		require.NoError(t, err)
		assert.Equal(t, models.ACTIVE, again.Credits[0].Status)
	})
}

func TestCommitMutation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := New()
		err := store.CommitMutation(ctx, issueMutation("joao", 0, "c1", decimal.NewFromInt(10)))

		require.NoError(t, err)
		ledger, _ := store.LoadLedger(ctx, "joao")
		assert.Equal(t, int64(1), ledger.Vault.Version)
		assert.Len(t, ledger.Credits, 1)
		assert.Len(t, ledger.Transactions, 1)
	})

	t.Run("Stale Version", func(t *testing.T) {
		store := New()
		require.NoError(t, store.CommitMutation(ctx, issueMutation("joao", 0, "c1", decimal.NewFromInt(10))))

		err := store.CommitMutation(ctx, issueMutation("joao", 0, "c2", decimal.NewFromInt(5)))

		assert.ErrorIs(t, err, storage.ErrConcurrencyConflict)
		ledger, _ := store.LoadLedger(ctx, "joao")
		assert.Len(t, ledger.Credits, 1)
	})

	t.Run("Updates Existing Credit In Place", func(t *testing.T) {
		store := New()
		require.NoError(t, store.CommitMutation(ctx, issueMutation("joao", 0, "c1", decimal.NewFromInt(10))))

		update := issueMutation("joao", 1, "c1", decimal.NewFromInt(10))
		update.PutCredits[0].Status = models.CONSUMED
		update.Append[0].ID = "tx-2"
		require.NoError(t, store.CommitMutation(ctx, update))

		ledger, _ := store.LoadLedger(ctx, "joao")
		require.Len(t, ledger.Credits, 1)
		assert.Equal(t, models.CONSUMED, ledger.Credits[0].Status)
		assert.Len(t, ledger.Transactions, 2)
	})
}

func TestListCustomers(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.CommitMutation(ctx, issueMutation("maria", 0, "c1", decimal.NewFromInt(1))))
	require.NoError(t, store.CommitMutation(ctx, issueMutation("carlos", 0, "c2", decimal.NewFromInt(1))))

	ids, err := store.ListCustomers(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"carlos", "maria"}, ids)
}

func TestLatestReadings(t *testing.T) {
	ctx := context.Background()
	store := New()
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveReadings(ctx, []models.InverterReading{
		{ID: "1", PlantID: "plant_alpha", InverterID: "inv_002", Timestamp: t0, Power: 1},
		{ID: "2", PlantID: "plant_alpha", InverterID: "inv_001", Timestamp: t0, Power: 2},
		{ID: "3", PlantID: "plant_alpha", InverterID: "inv_001", Timestamp: t0.Add(time.Minute), Power: 3},
		{ID: "4", PlantID: "plant_beta", InverterID: "inv_009", Timestamp: t0, Power: 4},
	}))

	latest, err := store.LatestReadings(ctx, "plant_alpha")

	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "3", latest[0].ID)
	assert.Equal(t, "1", latest[1].ID)
}

func TestGetPlant(t *testing.T) {
	ctx := context.Background()
	store := New()
	require.NoError(t, store.SavePlant(ctx, models.Plant{ID: "plant_alpha", Name: "Usina Solar Alpha"}))

	t.Run("Success", func(t *testing.T) {
		p, err := store.GetPlant(ctx, "plant_alpha")
		require.NoError(t, err)
		assert.Equal(t, "Usina Solar Alpha", p.Name)
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := store.GetPlant(ctx, "plant_zeta")
		assert.ErrorIs(t, err, storage.ErrPlantNotFound)
	})
}
