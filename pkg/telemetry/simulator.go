package telemetry

import (
	"math/rand/v2"
	"time"

	"github.com/chris/energy-vault/pkg/models"
)

// Perturbation spans. A reading moves by up to half the span in either direction.
const (
	powerSpan       = 2.0
	voltageSpan     = 5.0
	currentSpan     = 3.0
	temperatureSpan = 2.0
)

// Perturb derives the next simulated reading from prev. Only online inverters drift;
// electrical values are clamped at zero.
func Perturb(prev models.InverterReading, rng *rand.Rand, id string, now time.Time) models.InverterReading {
	next := prev
	next.ID = id
	next.Timestamp = now
	if prev.Status != models.InverterOnline {
		return next
	}

	next.Power = clamp(prev.Power + (rng.Float64()-0.5)*powerSpan)
	next.Voltage = clamp(prev.Voltage + (rng.Float64()-0.5)*voltageSpan)
	next.Current = clamp(prev.Current + (rng.Float64()-0.5)*currentSpan)
	next.Temperature = prev.Temperature + (rng.Float64()-0.5)*temperatureSpan
	return next
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
