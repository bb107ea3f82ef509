// Package plants serves the solar plant telemetry endpoints.
package plants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/mapping"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/chris/energy-vault/pkg/telemetry"
)

//go:generate mockery --name=Telemetry --output=mocks --outpkg=mocks

// Telemetry is the part of telemetry.Service the handlers need.
type Telemetry interface {
	Snapshots(ctx context.Context) ([]models.PlantSnapshot, error)
	Snapshot(ctx context.Context, plantID string) (*models.PlantSnapshot, error)
	Refresh(ctx context.Context, plantID string) ([]models.InverterReading, error)
	Ingest(ctx context.Context, readings []models.InverterReading) ([]models.InverterReading, error)
}

// Make sure the service conforms to the interface
var _ Telemetry = (*telemetry.Service)(nil)

// PlantsHandler holds the dependencies for plant-related handlers.
type PlantsHandler struct {
	Telemetry Telemetry
	Logger    *slog.Logger
}

// NewPlantsHandler creates a new PlantsHandler.
func NewPlantsHandler(t Telemetry, logger *slog.Logger) *PlantsHandler {
	return &PlantsHandler{Telemetry: t, Logger: logger}
}

// ListPlants returns a snapshot of every plant.
func (h *PlantsHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.Telemetry.Snapshots(r.Context())
	if err != nil {
		h.writeError(w, "Failed to list plants", err)
		return
	}

	out := make([]*api.PlantSnapshot, len(snaps))
	for i := range snaps {
		out[i] = mapping.ToApiPlantSnapshot(&snaps[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPlant returns the plant's current snapshot.
func (h *PlantsHandler) GetPlant(w http.ResponseWriter, r *http.Request, plantId string) {
	snap, err := h.Telemetry.Snapshot(r.Context(), plantId)
	if err != nil {
		h.writeError(w, "Failed to retrieve plant", err)
		return
	}
	writeJSON(w, http.StatusOK, mapping.ToApiPlantSnapshot(snap))
}

// RefreshPlant simulates one telemetry tick and returns the new readings.
func (h *PlantsHandler) RefreshPlant(w http.ResponseWriter, r *http.Request, plantId string) {
	readings, err := h.Telemetry.Refresh(r.Context(), plantId)
	if err != nil {
		h.writeError(w, "Failed to refresh plant", err)
		return
	}
	writeJSON(w, http.StatusOK, toApiReadings(readings))
}

// IngestReadings stores readings pushed by a plant gateway.
func (h *PlantsHandler) IngestReadings(w http.ResponseWriter, r *http.Request, plantId string) {
	var body api.IngestReadingsJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	readings := make([]models.InverterReading, len(body.Readings))
	for i := range body.Readings {
		readings[i] = mapping.ToDomainReading(plantId, &body.Readings[i])
	}

	stored, err := h.Telemetry.Ingest(r.Context(), readings)
	if err != nil {
		h.writeError(w, "Failed to ingest readings", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApiReadings(stored))
}

func toApiReadings(readings []models.InverterReading) []*api.InverterReading {
	out := make([]*api.InverterReading, len(readings))
	for i := range readings {
		out[i] = mapping.ToApiReading(&readings[i])
	}
	return out
}

func (h *PlantsHandler) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, storage.ErrPlantNotFound):
		http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusNotFound)
	case errors.Is(err, telemetry.ErrInvalidReading):
		http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusUnprocessableEntity)
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
