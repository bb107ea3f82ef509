package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestLatestReadingsPipeline(t *testing.T) {
	pipeline := latestReadingsPipeline("plant_alpha")

	require.Len(t, pipeline, 5)
	stages := make([]string, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = stage[0].Key
	}
	assert.Equal(t, []string{"$match", "$sort", "$group", "$replaceRoot", "$sort"}, stages)
	assert.Equal(t, bson.M{"plant_id": "plant_alpha"}, pipeline[0][0].Value)

	// Newest first within each inverter, so $first picks the latest reading.
	sort := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "timestamp", Value: -1}, sort[1])

	_, err := bson.Marshal(bson.D{{Key: "pipeline", Value: pipeline}})
	assert.NoError(t, err)
}
