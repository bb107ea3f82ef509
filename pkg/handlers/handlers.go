package handlers

import (
	"log/slog"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/handlers/plants"
	"github.com/chris/energy-vault/pkg/handlers/vault"
)

// ApiHandler implements the generated server interface by composing the
// vault and plant handlers.
type ApiHandler struct {
	*vault.VaultHandler
	*plants.PlantsHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(l vault.Ledger, t plants.Telemetry, logger *slog.Logger) *ApiHandler {
	return &ApiHandler{
		VaultHandler:  vault.NewVaultHandler(l, logger),
		PlantsHandler: plants.NewPlantsHandler(t, logger),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)
