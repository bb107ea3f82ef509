package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidReading is wrapped by every rejected reading or plant.
var ErrInvalidReading = errors.New("invalid telemetry")

const snapshotConcurrency = 4

// Service rolls inverter telemetry up into plant snapshots.
type Service struct {
	store  storage.TelemetryStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand sets the random source used by Refresh.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator overrides reading ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a telemetry Service.
func New(store storage.TelemetryStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status reports the plant status. Unknown plants and plants without readings are offline.
func (s *Service) Status(ctx context.Context, plantID string) (models.PlantStatus, error) {
	readings, err := s.store.LatestReadings(ctx, plantID)
	if err != nil {
		return models.PlantOffline, fmt.Errorf("failed to load readings: %w", err)
	}
	return StatusOf(readings), nil
}

// Efficiency returns the mean efficiency of the plant's online inverters.
func (s *Service) Efficiency(ctx context.Context, plantID string) (float64, error) {
	readings, err := s.store.LatestReadings(ctx, plantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load readings: %w", err)
	}
	return EfficiencyOf(readings), nil
}

// Snapshot rolls up the plant's latest readings.
func (s *Service) Snapshot(ctx context.Context, plantID string) (*models.PlantSnapshot, error) {
	plant, err := s.store.GetPlant(ctx, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plant %s: %w", plantID, err)
	}
	readings, err := s.store.LatestReadings(ctx, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	snap := Rollup(*plant, readings)
	return &snap, nil
}

// Snapshots rolls up every plant in parallel, preserving catalog order.
func (s *Service) Snapshots(ctx context.Context) ([]models.PlantSnapshot, error) {
	plants, err := s.store.ListPlants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}

	out := make([]models.PlantSnapshot, len(plants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i, plant := range plants {
		g.Go(func() error {
			readings, err := s.store.LatestReadings(gctx, plant.ID)
			if err != nil {
				return fmt.Errorf("failed to load readings for %s: %w", plant.ID, err)
			}
			out[i] = Rollup(plant, readings)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlants returns the plant catalog.
func (s *Service) ListPlants(ctx context.Context) ([]models.Plant, error) {
	plants, err := s.store.ListPlants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// RegisterPlant adds or replaces a plant in the catalog.
func (s *Service) RegisterPlant(ctx context.Context, plant models.Plant) error {
	if plant.ID == "" || plant.Name == "" {
		return fmt.Errorf("%w: plant id and name are required", ErrInvalidReading)
	}
	if plant.CapacityKWp < 0 || !finite(plant.CapacityKWp) {
		return fmt.Errorf("%w: capacity must be a non-negative number", ErrInvalidReading)
	}
	if err := s.store.SavePlant(ctx, plant); err != nil {
		return fmt.Errorf("failed to save plant: %w", err)
	}
	return nil
}

// Refresh simulates live telemetry: every inverter gets a new reading drifted from its latest one.
func (s *Service) Refresh(ctx context.Context, plantID string) ([]models.InverterReading, error) {
	if _, err := s.store.GetPlant(ctx, plantID); err != nil {
		return nil, fmt.Errorf("failed to get plant %s: %w", plantID, err)
	}
	latest, err := s.store.LatestReadings(ctx, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	now := s.now().UTC()
	next := make([]models.InverterReading, len(latest))
	s.mu.Lock()
	for i, r := range byInverter(latest) {
		next[i] = Perturb(r, s.rng, s.newID(), now)
	}
	s.mu.Unlock()

	if err := s.store.SaveReadings(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save readings: %w", err)
	}
	return next, nil
}

// RefreshAll refreshes every plant, logging and skipping failures.
func (s *Service) RefreshAll(ctx context.Context) error {
	plants, err := s.store.ListPlants(ctx)
	if err != nil {
		return fmt.Errorf("failed to list plants: %w", err)
	}
	var errs []error
	for _, p := range plants {
		if _, err := s.Refresh(ctx, p.ID); err != nil {
			s.logger.Error("failed to refresh plant", "plantId", p.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ingest validates and stores readings from a real telemetry feed.
func (s *Service) Ingest(ctx context.Context, readings []models.InverterReading) ([]models.InverterReading, error) {
	if len(readings) == 0 {
		return nil, fmt.Errorf("%w: no readings", ErrInvalidReading)
	}

	known := make(map[string]bool)
	now := s.now().UTC()
	out := make([]models.InverterReading, len(readings))
	for i, r := range readings {
		if err := validateReading(r); err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		if _, ok := known[r.PlantID]; !ok {
			if _, err := s.store.GetPlant(ctx, r.PlantID); err != nil {
				return nil, fmt.Errorf("reading %d: failed to get plant %s: %w", i, r.PlantID, err)
			}
			known[r.PlantID] = true
		}
		if r.ID == "" {
			r.ID = s.newID()
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = now
		}
		out[i] = r
	}

	if err := s.store.SaveReadings(ctx, out); err != nil {
		return nil, fmt.Errorf("failed to save readings: %w", err)
	}
	s.logger.Debug("telemetry ingested", "count", len(out))
	return out, nil
}

// Seed registers the sample fleet and its initial readings.
func (s *Service) Seed(ctx context.Context) error {
	for _, sp := range SamplePlants(s.now().UTC()) {
		if err := s.RegisterPlant(ctx, sp.Plant); err != nil {
			return err
		}
		if err := s.store.SaveReadings(ctx, sp.Readings); err != nil {
			return fmt.Errorf("failed to save sample readings: %w", err)
		}
	}
	return nil
}

func validateReading(r models.InverterReading) error {
	if r.PlantID == "" || r.InverterID == "" {
		return fmt.Errorf("%w: plant_id and inverter_id are required", ErrInvalidReading)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidReading, r.Status)
	}
	for _, v := range []float64{r.Power, r.Energy, r.Voltage, r.Current, r.Frequency, r.Temperature, r.Efficiency} {
		if !finite(v) {
			return fmt.Errorf("%w: values must be finite", ErrInvalidReading)
		}
	}
	if r.Power < 0 || r.Energy < 0 || r.Voltage < 0 || r.Current < 0 || r.Frequency < 0 {
		return fmt.Errorf("%w: electrical values must not be negative", ErrInvalidReading)
	}
	if r.Efficiency < 0 || r.Efficiency > 100 {
		return fmt.Errorf("%w: efficiency must be between 0 and 100", ErrInvalidReading)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
