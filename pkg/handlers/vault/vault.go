// Package vault serves the customer energy vault endpoints.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/mapping"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/shopspring/decimal"
)

//go:generate mockery --name=Ledger --output=mocks --outpkg=mocks

// Ledger is the part of ledger.Service the handlers need.
type Ledger interface {
	ListCustomers(ctx context.Context) ([]string, error)
	GetVault(ctx context.Context, customerID string) (*models.EnergyVault, error)
	GetAvailableBalance(ctx context.Context, customerID string) (decimal.Decimal, error)
	ListCredits(ctx context.Context, customerID string, status models.CreditStatus) ([]models.EnergyCredit, error)
	GetTransactionHistory(ctx context.Context, customerID string) ([]models.EnergyTransaction, error)
	IssueCredit(ctx context.Context, req ledger.IssueRequest) (*models.EnergyCredit, error)
	ConsumeCredits(ctx context.Context, customerID string, amount decimal.Decimal, invoiceID string) (*ledger.ConsumptionResult, error)
	Verify(ctx context.Context, customerID string) (*ledger.VerifyReport, error)
}

// Make sure the service conforms to the interface
var _ Ledger = (*ledger.Service)(nil)

// VaultHandler holds the dependencies for vault-related handlers.
type VaultHandler struct {
	Ledger Ledger
	Logger *slog.Logger
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(l Ledger, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{Ledger: l, Logger: logger}
}

// ListCustomers returns every customer with a vault.
func (h *VaultHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Ledger.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list customers", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, api.CustomerList{Customers: ids})
}

// GetVault returns the vault with its transaction history.
func (h *VaultHandler) GetVault(w http.ResponseWriter, r *http.Request, customerId string) {
	v, err := h.Ledger.GetVault(r.Context(), customerId)
	if err != nil {
		h.writeError(w, "Failed to retrieve vault", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiVault(v))
}

// GetBalance returns the available credit balance.
func (h *VaultHandler) GetBalance(w http.ResponseWriter, r *http.Request, customerId string) {
	balance, err := h.Ledger.GetAvailableBalance(r.Context(), customerId)
	if err != nil {
		h.writeError(w, "Failed to retrieve balance", err)
		return
	}
	writeJSON(w, http.StatusOK, api.Balance{CustomerId: customerId, AvailableCredits: balance.String()})
}

// ListCredits returns the customer's credits, optionally filtered by status.
func (h *VaultHandler) ListCredits(w http.ResponseWriter, r *http.Request, customerId string, params api.ListCreditsParams) {
	var status models.CreditStatus
	if params.Status != nil {
		status = models.CreditStatus(*params.Status)
		if !status.Valid() {
			http.Error(w, fmt.Sprintf("Invalid status %q", status), http.StatusBadRequest)
			return
		}
	}

	credits, err := h.Ledger.ListCredits(r.Context(), customerId, status)
	if err != nil {
		h.writeError(w, "Failed to retrieve credits", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiCredits(credits))
}

// IssueCredit adds a new active credit to the vault.
func (h *VaultHandler) IssueCredit(w http.ResponseWriter, r *http.Request, customerId string) {
	var body api.IssueCreditJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	amount, err := ledger.ParseAmount("amount", body.Amount)
	if err != nil {
		h.writeError(w, "Invalid credit", err)
		return
	}
	req := ledger.IssueRequest{
		CustomerID: customerId,
		Amount:     amount,
		Source:     models.CreditSource(body.Source),
	}
	if body.Description != nil {
		req.Description = *body.Description
	}

	credit, err := h.Ledger.IssueCredit(r.Context(), req)
	if err != nil {
		h.writeError(w, "Failed to issue credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, mapping.ToApiCredit(credit))
}

// ConsumeCredits settles an invoice against the vault.
func (h *VaultHandler) ConsumeCredits(w http.ResponseWriter, r *http.Request, customerId string) {
	var body api.ConsumeCreditsJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	amount, err := ledger.ParseAmount("amount", body.Amount)
	if err != nil {
		h.writeError(w, "Invalid consumption", err)
		return
	}

	result, err := h.Ledger.ConsumeCredits(r.Context(), customerId, amount, body.InvoiceId)
	if err != nil {
		h.writeError(w, "Failed to consume credits", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiConsumption(result))
}

// ListTransactions returns the transaction history, oldest first.
func (h *VaultHandler) ListTransactions(w http.ResponseWriter, r *http.Request, customerId string) {
	txs, err := h.Ledger.GetTransactionHistory(r.Context(), customerId)
	if err != nil {
		h.writeError(w, "Failed to retrieve transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiTransactions(txs))
}

// VerifyVault reports whether the vault agrees with its transactions and credits.
func (h *VaultHandler) VerifyVault(w http.ResponseWriter, r *http.Request, customerId string) {
	report, err := h.Ledger.Verify(r.Context(), customerId)
	if err != nil {
		h.writeError(w, "Failed to verify vault", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiVerification(report))
}

// writeError maps ledger errors onto HTTP status codes.
func (h *VaultHandler) writeError(w http.ResponseWriter, msg string, err error) {
	var validation *ledger.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusUnprocessableEntity)
	case errors.Is(err, storage.ErrConcurrencyConflict):
		http.Error(w, fmt.Sprintf("%s: vault was modified concurrently, retry", msg), http.StatusConflict)
	default:
		h.Logger.Error(msg, "error", err)
		http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
