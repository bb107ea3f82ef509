package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/storage/memory"
	"github.com/chris/energy-vault/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tel := telemetry.New(store, telemetry.WithLogger(logger))
	require.NoError(t, tel.Seed(context.Background()))

	h := NewApiHandler(ledger.New(store, ledger.WithLogger(logger)), tel, logger)
	srv := httptest.NewServer(api.HandlerFromMux(h, chi.NewRouter()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestVaultFlow(t *testing.T) {
	srv := newTestServer(t)

	var credit api.EnergyCredit
	code := do(t, http.MethodPost, srv.URL+"/customers/joao/credits", `{"amount":"150.5","source":"solar_generation"}`, &credit)
	require.Equal(t, http.StatusCreated, code)

	var result api.ConsumptionResult
	code = do(t, http.MethodPost, srv.URL+"/customers/joao/consumptions", `{"amount":"50","invoice_id":"inv_1"}`, &result)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, result.Consumed, 1)
	assert.Equal(t, credit.Id, result.Consumed[0].Id)
	assert.Equal(t, "50", result.Consumed[0].Amount)
	require.NotNil(t, result.Remainder)
	assert.Equal(t, "100.5", result.Remainder.Amount)
	assert.Equal(t, "0", result.Shortfall)

	var v api.Vault
	code = do(t, http.MethodGet, srv.URL+"/customers/joao/vault", "", &v)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "150.5", v.TotalCredits)
	assert.Equal(t, "100.5", v.AvailableCredits)
	assert.Equal(t, "50", v.ConsumedCredits)
	assert.Len(t, v.Transactions, 2)

	// Replaying the invoice changes nothing.
	var replay api.ConsumptionResult
	code = do(t, http.MethodPost, srv.URL+"/customers/joao/consumptions", `{"amount":"50","invoice_id":"inv_1"}`, &replay)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, replay.Replayed)

	var balance api.Balance
	code = do(t, http.MethodGet, srv.URL+"/customers/joao/balance", "", &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100.5", balance.AvailableCredits)

	var active []api.EnergyCredit
	code = do(t, http.MethodGet, srv.URL+"/customers/joao/credits?status=active", "", &active)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, active, 1)
	assert.Equal(t, result.Remainder.Id, active[0].Id)

	var report api.Verification
	code = do(t, http.MethodGet, srv.URL+"/customers/joao/verification", "", &report)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, report.Consistent)

	var customers api.CustomerList
	code = do(t, http.MethodGet, srv.URL+"/customers", "", &customers)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"joao"}, customers.Customers)
}

func TestUnknownCustomerReadsAreEmpty(t *testing.T) {
	srv := newTestServer(t)

	var balance api.Balance
	code := do(t, http.MethodGet, srv.URL+"/customers/maria/balance", "", &balance)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0", balance.AvailableCredits)
}

func TestPlantRoutes(t *testing.T) {
	srv := newTestServer(t)

	var snaps []api.PlantSnapshot
	code := do(t, http.MethodGet, srv.URL+"/plants", "", &snaps)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, snaps, 3)

	var snap api.PlantSnapshot
	code = do(t, http.MethodGet, srv.URL+"/plants/plant_gamma", "", &snap)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, api.PlantStatusOffline, snap.Status)

	code = do(t, http.MethodGet, srv.URL+"/plants/plant_x", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = do(t, http.MethodPost, srv.URL+"/plants/plant_alpha/refresh", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
