package telemetry

import (
	"sort"
	"time"

	"github.com/chris/energy-vault/pkg/models"
)

// byInverter returns a copy of readings ordered by inverter ID so sums do not depend on input order.
func byInverter(readings []models.InverterReading) []models.InverterReading {
	out := make([]models.InverterReading, len(readings))
	copy(out, readings)
	sort.SliceStable(out, func(i, j int) bool { return out[i].InverterID < out[j].InverterID })
	return out
}

// StatusOf is online when every inverter is online, offline when none is, partial otherwise.
func StatusOf(readings []models.InverterReading) models.PlantStatus {
	online := 0
	for _, r := range readings {
		if r.Status == models.InverterOnline {
			online++
		}
	}
	switch {
	case online == 0:
		return models.PlantOffline
	case online == len(readings):
		return models.PlantOnline
	default:
		return models.PlantPartial
	}
}

// EfficiencyOf averages efficiency over online inverters only; zero when none is online.
func EfficiencyOf(readings []models.InverterReading) float64 {
	sum, n := 0.0, 0
	for _, r := range byInverter(readings) {
		if r.Status != models.InverterOnline {
			continue
		}
		sum += r.Efficiency
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Rollup aggregates the latest readings of a plant.
func Rollup(plant models.Plant, readings []models.InverterReading) models.PlantSnapshot {
	sorted := byInverter(readings)
	snap := models.PlantSnapshot{
		Plant:          plant,
		Status:         StatusOf(sorted),
		Efficiency:     EfficiencyOf(sorted),
		TotalInverters: len(sorted),
		Inverters:      sorted,
	}

	var last time.Time
	for _, r := range sorted {
		snap.TotalPower += r.Power
		snap.TotalEnergy += r.Energy
		if r.Status == models.InverterOnline {
			snap.OnlineInverters++
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	snap.LastUpdate = last
	return snap
}
