package storage

import (
	"context"

	"github.com/chris/energy-vault/pkg/models"
)

// PlantCatalog stores plant metadata.
type PlantCatalog interface {
	// GetPlant returns ErrPlantNotFound for unknown IDs.
	GetPlant(ctx context.Context, plantID string) (*models.Plant, error)
	ListPlants(ctx context.Context) ([]models.Plant, error)
	SavePlant(ctx context.Context, plant models.Plant) error
}

// ReadingStore stores inverter telemetry.
type ReadingStore interface {
	SaveReadings(ctx context.Context, readings []models.InverterReading) error

	// LatestReadings returns the most recent reading of every inverter of the plant.
	LatestReadings(ctx context.Context, plantID string) ([]models.InverterReading, error)
}

// TelemetryStore combines plant metadata and readings.
type TelemetryStore interface {
	PlantCatalog
	ReadingStore
}
