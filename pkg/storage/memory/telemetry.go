package memory

import (
	"context"
	"sort"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
)

// maxReadingsPerPlant bounds the retained reading history per plant.
const maxReadingsPerPlant = 1000

// GetPlant returns the plant or storage.ErrPlantNotFound.
func (s *Store) GetPlant(ctx context.Context, plantID string) (*models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plants[plantID]
	if !ok {
		return nil, storage.ErrPlantNotFound
	}
	return &p, nil
}

// ListPlants returns all plants ordered by ID.
func (s *Store) ListPlants(ctx context.Context) ([]models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plants := make([]models.Plant, 0, len(s.plants))
	for _, p := range s.plants {
		plants = append(plants, p)
	}
	sort.Slice(plants, func(i, j int) bool { return plants[i].ID < plants[j].ID })
	return plants, nil
}

// SavePlant inserts or replaces a plant.
func (s *Store) SavePlant(ctx context.Context, plant models.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plants[plant.ID] = plant
	return nil
}

// SaveReadings appends readings to each plant's history.
func (s *Store) SaveReadings(ctx context.Context, readings []models.InverterReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range readings {
		history := append(s.readings[r.PlantID], r)
		if len(history) > maxReadingsPerPlant {
			history = history[len(history)-maxReadingsPerPlant:]
		}
		s.readings[r.PlantID] = history
	}
	return nil
}

// LatestReadings returns the newest reading per inverter, ordered by inverter ID.
func (s *Store) LatestReadings(ctx context.Context, plantID string) ([]models.InverterReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]models.InverterReading)
	for _, r := range s.readings[plantID] {
		prev, ok := latest[r.InverterID]
		if !ok || !r.Timestamp.Before(prev.Timestamp) {
			latest[r.InverterID] = r
		}
	}

	out := make([]models.InverterReading, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InverterID < out[j].InverterID })
	return out, nil
}
