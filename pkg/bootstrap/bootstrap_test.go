package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStores(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := &config.Config{StorageBackend: config.BackendMemory, TelemetryBackend: config.BackendMemory}

		s, err := OpenStores(context.Background(), cfg, quietLogger())
		require.NoError(t, err)
		defer s.Close()

		mem, ok := s.Credits.(*memory.Store)
		require.True(t, ok)
		assert.Same(t, mem, s.Telemetry)
		assert.Same(t, mem, s.Connections)
		assert.Nil(t, s.AWS)
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		cfg := &config.Config{StorageBackend: "sqlite", TelemetryBackend: config.BackendMemory}
		_, err := OpenStores(context.Background(), cfg, quietLogger())
		assert.ErrorContains(t, err, `unknown storage backend "sqlite"`)
	})
}

func TestNewServices(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		StorageBackend:   config.BackendMemory,
		TelemetryBackend: config.BackendMemory,
		SeedSampleData:   true,
	}
	s, err := OpenStores(ctx, cfg, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	l, err := NewLedger(ctx, cfg, s, quietLogger())
	require.NoError(t, err)
	balance, err := l.GetAvailableBalance(ctx, "maria.souza")
	require.NoError(t, err)
	assert.Equal(t, "89.2", balance.String())

	tel, err := NewTelemetry(ctx, cfg, s, quietLogger())
	require.NoError(t, err)
	plants, err := tel.ListPlants(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 3)

	// A second start must not duplicate the sample data.
	_, err = NewTelemetry(ctx, cfg, s, quietLogger())
	require.NoError(t, err)
	plants, err = tel.ListPlants(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, 3)
}
