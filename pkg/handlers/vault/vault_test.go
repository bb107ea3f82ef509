package vault_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/handlers/vault"
	"github.com/chris/energy-vault/pkg/handlers/vault/mocks"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func amountEquals(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestIssueCredit(t *testing.T) {
	credit := &models.EnergyCredit{
		ID: "c1", CustomerID: "joao", Amount: decimal.RequireFromString("150.5"),
		Source: models.SourceSolarGeneration, Status: models.ACTIVE, IssuedAt: issuedAt,
	}

	t.Run("Success", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("IssueCredit", mock.Anything, mock.MatchedBy(func(req ledger.IssueRequest) bool {
			return req.CustomerID == "joao" && req.Amount.Equal(decimal.RequireFromString("150.5")) &&
				req.Source == models.SourceSolarGeneration && req.Description == "March generation"
		})).Return(credit, nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		body := `{"amount":"150.5","source":"solar_generation","description":"March generation"}`
		req := httptest.NewRequest(http.MethodPost, "/customers/joao/credits", strings.NewReader(body))
		rr := httptest.NewRecorder()

		h.IssueCredit(rr, req, "joao")

		assert.Equal(t, http.StatusCreated, rr.Code)
		var out api.EnergyCredit
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "c1", out.Id)
		assert.Equal(t, "150.5", out.Amount)
		assert.Equal(t, api.Active, out.Status)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Bad Request - Invalid JSON", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		h := vault.NewVaultHandler(mockLedger, slog.Default())

		req := httptest.NewRequest(http.MethodPost, "/customers/joao/credits", strings.NewReader("not-json"))
		rr := httptest.NewRecorder()

		h.IssueCredit(rr, req, "joao")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockLedger.AssertNotCalled(t, "IssueCredit", mock.Anything, mock.Anything)
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		h := vault.NewVaultHandler(mockLedger, slog.Default())

		req := httptest.NewRequest(http.MethodPost, "/customers/joao/credits", strings.NewReader(`{"amount":"NaN","source":"purchase"}`))
		rr := httptest.NewRecorder()

		h.IssueCredit(rr, req, "joao")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		mockLedger.AssertNotCalled(t, "IssueCredit", mock.Anything, mock.Anything)
	})

	t.Run("Validation Error From Ledger", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		validation := &ledger.ValidationError{Field: "source", Reason: "unknown source"}
		mockLedger.On("IssueCredit", mock.Anything, mock.Anything).Return(nil, validation)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		req := httptest.NewRequest(http.MethodPost, "/customers/joao/credits", strings.NewReader(`{"amount":"1","source":"wind"}`))
		rr := httptest.NewRecorder()

		h.IssueCredit(rr, req, "joao")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("IssueCredit", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("failed to commit: %w", storage.ErrConcurrencyConflict))

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		req := httptest.NewRequest(http.MethodPost, "/customers/joao/credits", strings.NewReader(`{"amount":"1","source":"purchase"}`))
		rr := httptest.NewRecorder()

		h.IssueCredit(rr, req, "joao")

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestConsumeCredits(t *testing.T) {
	result := &ledger.ConsumptionResult{
		Consumed: []models.EnergyCredit{{
			ID: "c1", CustomerID: "joao", Amount: decimal.RequireFromString("50"),
			Source: models.SourceSolarGeneration, Status: models.CONSUMED, IssuedAt: issuedAt, InvoiceID: "inv_1",
		}},
		Remainder: &models.EnergyCredit{
			ID: "c2", CustomerID: "joao", Amount: decimal.RequireFromString("100.5"),
			Source: models.SourceSolarGeneration, Status: models.ACTIVE, IssuedAt: issuedAt, ParentID: "c1",
		},
		ConsumedAmount: decimal.RequireFromString("50"),
		Shortfall:      decimal.Zero,
	}

	t.Run("Success", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("ConsumeCredits", mock.Anything, "joao", amountEquals("50"), "inv_1").Return(result, nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		req := httptest.NewRequest(http.MethodPost, "/customers/joao/consumptions", strings.NewReader(`{"amount":"50","invoice_id":"inv_1"}`))
		rr := httptest.NewRecorder()

		h.ConsumeCredits(rr, req, "joao")

		assert.Equal(t, http.StatusOK, rr.Code)
		var out api.ConsumptionResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "50", out.ConsumedAmount)
		assert.Equal(t, "0", out.Shortfall)
		require.NotNil(t, out.Remainder)
		assert.Equal(t, "100.5", out.Remainder.Amount)
		mockLedger.AssertExpectations(t)
	})

	t.Run("Storage Failure", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("ConsumeCredits", mock.Anything, "joao", mock.Anything, "inv_1").Return(nil, errors.New("disk on fire"))

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		req := httptest.NewRequest(http.MethodPost, "/customers/joao/consumptions", strings.NewReader(`{"amount":"50","invoice_id":"inv_1"}`))
		rr := httptest.NewRecorder()

		h.ConsumeCredits(rr, req, "joao")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockLedger.AssertExpectations(t)
	})
}

func TestQueries(t *testing.T) {
	t.Run("Balance", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("GetAvailableBalance", mock.Anything, "joao").Return(decimal.RequireFromString("100.5"), nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		rr := httptest.NewRecorder()
		h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/customers/joao/balance", nil), "joao")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"customer_id":"joao","available_credits":"100.5"}`, rr.Body.String())
	})

	t.Run("Customers Empty", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("ListCustomers", mock.Anything).Return(nil, nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		rr := httptest.NewRecorder()
		h.ListCustomers(rr, httptest.NewRequest(http.MethodGet, "/customers", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"customers":[]}`, rr.Body.String())
	})

	t.Run("Credits By Status", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("ListCredits", mock.Anything, "joao", models.ACTIVE).Return([]models.EnergyCredit{}, nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		status := api.Active
		rr := httptest.NewRecorder()
		h.ListCredits(rr, httptest.NewRequest(http.MethodGet, "/customers/joao/credits?status=active", nil), "joao", api.ListCreditsParams{Status: &status})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
		mockLedger.AssertExpectations(t)
	})

	t.Run("Credits Unknown Status", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		status := api.CreditStatus("pending")
		rr := httptest.NewRecorder()
		h.ListCredits(rr, httptest.NewRequest(http.MethodGet, "/customers/joao/credits?status=pending", nil), "joao", api.ListCreditsParams{Status: &status})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Verification", func(t *testing.T) {
		mockLedger := new(mocks.Ledger)
		mockLedger.On("Verify", mock.Anything, "joao").Return(&ledger.VerifyReport{
			CustomerID: "joao",
			Version:    2,
			Consistent: false,
			Problems:   []string{"available differs"},
		}, nil)

		h := vault.NewVaultHandler(mockLedger, slog.Default())
		rr := httptest.NewRecorder()
		h.VerifyVault(rr, httptest.NewRequest(http.MethodGet, "/customers/joao/verification", nil), "joao")

		assert.Equal(t, http.StatusOK, rr.Code)
		var out api.Verification
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.False(t, out.Consistent)
		require.NotNil(t, out.Problems)
		assert.Equal(t, []string{"available differs"}, *out.Problems)
	})
}
