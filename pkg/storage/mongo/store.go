// Package mongo keeps the plant catalog and inverter readings in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	plantsCollection   = "plants"
	readingsCollection = "inverter_readings"
)

// Store implements storage.TelemetryStore.
type Store struct {
	client   *mongo.Client
	plants   *mongo.Collection
	readings *mongo.Collection
}

// Make sure we conform to the interface
var _ storage.TelemetryStore = (*Store)(nil)

// Connect dials uri, pings the server and opens the telemetry database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:   client,
		plants:   db.Collection(plantsCollection),
		readings: db.Collection(readingsCollection),
	}, nil
}

// EnsureIndexes creates the index backing LatestReadings.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.readings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "plant_id", Value: 1}, {Key: "inverter_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create readings index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetPlant returns storage.ErrPlantNotFound for unknown IDs.
func (s *Store) GetPlant(ctx context.Context, plantID string) (*models.Plant, error) {
	var p models.Plant
	err := s.plants.FindOne(ctx, bson.M{"_id": plantID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrPlantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}
	return &p, nil
}

// ListPlants returns all plants ordered by ID.
func (s *Store) ListPlants(ctx context.Context) ([]models.Plant, error) {
	cur, err := s.plants.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	var plants []models.Plant
	if err := cur.All(ctx, &plants); err != nil {
		return nil, fmt.Errorf("failed to decode plants: %w", err)
	}
	return plants, nil
}

// SavePlant upserts the plant by ID.
func (s *Store) SavePlant(ctx context.Context, plant models.Plant) error {
	_, err := s.plants.ReplaceOne(ctx, bson.M{"_id": plant.ID}, plant, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save plant %s: %w", plant.ID, err)
	}
	return nil
}

// SaveReadings inserts the readings in one batch.
func (s *Store) SaveReadings(ctx context.Context, readings []models.InverterReading) error {
	if len(readings) == 0 {
		return nil
	}
	docs := make([]interface{}, len(readings))
	for i, r := range readings {
		docs[i] = r
	}
	if _, err := s.readings.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert readings: %w", err)
	}
	return nil
}

// LatestReadings returns the newest reading per inverter, ordered by inverter ID.
func (s *Store) LatestReadings(ctx context.Context, plantID string) ([]models.InverterReading, error) {
	cur, err := s.readings.Aggregate(ctx, latestReadingsPipeline(plantID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate readings: %w", err)
	}
	var readings []models.InverterReading
	if err := cur.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode readings: %w", err)
	}
	return readings, nil
}

func latestReadingsPipeline(plantID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"plant_id": plantID}}},
		{{Key: "$sort", Value: bson.D{{Key: "inverter_id", Value: 1}, {Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$inverter_id"},
			{Key: "doc", Value: bson.M{"$first": "$$ROOT"}},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
		{{Key: "$sort", Value: bson.D{{Key: "inverter_id", Value: 1}}}},
	}
}
