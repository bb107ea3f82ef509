package telemetry

import (
	"time"

	"github.com/chris/energy-vault/pkg/models"
)

// SamplePlant pairs a plant with its initial inverter readings.
type SamplePlant struct {
	Plant    models.Plant
	Readings []models.InverterReading
}

// SamplePlants returns the demo fleet used by local development.
func SamplePlants(now time.Time) []SamplePlant {
	return []SamplePlant{
		{
			Plant: models.Plant{ID: "plant_alpha", Name: "Usina Solar Alpha", Location: "Cidade do Sol, MG", CapacityKWp: 50},
			Readings: []models.InverterReading{{
				ID: "1", PlantID: "plant_alpha", InverterID: "inv_001", Timestamp: now,
				Power: 45.2, Energy: 1250.8, Voltage: 230.5, Current: 196.1, Frequency: 60, Temperature: 45.2,
				Status: models.InverterOnline, Efficiency: 96.8,
			}},
		},
		{
			Plant: models.Plant{ID: "plant_beta", Name: "Usina Solar Beta", Location: "Vale Verde, SP", CapacityKWp: 40},
			Readings: []models.InverterReading{{
				ID: "2", PlantID: "plant_beta", InverterID: "inv_002", Timestamp: now,
				Power: 38.7, Energy: 987.3, Voltage: 228.9, Current: 169.2, Frequency: 60, Temperature: 42.1,
				Status: models.InverterOnline, Efficiency: 95.2,
			}},
		},
		{
			Plant: models.Plant{ID: "plant_gamma", Name: "Usina Solar Gama", Location: "Serra Azul, BA", CapacityKWp: 30},
			Readings: []models.InverterReading{{
				ID: "3", PlantID: "plant_gamma", InverterID: "inv_003", Timestamp: now,
				Temperature: 25, Status: models.InverterOffline,
			}},
		},
	}
}
