package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/jobs"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/messaging"
	"github.com/chris/energy-vault/pkg/scheduler"
	"github.com/chris/energy-vault/pkg/storage/memory"
	"github.com/chris/energy-vault/pkg/telemetry"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type recordingScheduler struct {
	reqs []scheduler.ConsumptionRequest
}

func (s *recordingScheduler) ScheduleConsumption(ctx context.Context, req scheduler.ConsumptionRequest) error {
	s.reqs = append(s.reqs, req)
	return nil
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	l := ledger.New(store, ledger.WithLogger(logger))
	tel := telemetry.New(store, telemetry.WithLogger(logger))
	require.NoError(t, l.Seed(context.Background()))
	require.NoError(t, tel.Seed(context.Background()))

	return &env{
		cfg:         &config.Config{CreditTTLDays: 365},
		logger:      logger,
		ledger:      l,
		telemetry:   tel,
		jobs:        jobs.NewJobs(l, tel, 0, logger),
		generation:  &recordingWriter{},
		consumption: &recordingScheduler{},
	}
}

func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func(ctx context.Context) (*env, error) { return e, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVaultCommands(t *testing.T) {
	e := newTestEnv(t)

	out, err := run(t, e, "balance", "joao.silva")
	require.NoError(t, err)
	assert.Equal(t, "150.5\n", out)

	out, err = run(t, e, "consume", "joao.silva", "50", "inv_1")
	require.NoError(t, err)
	var consumption api.ConsumptionResult
	require.NoError(t, json.Unmarshal([]byte(out), &consumption))
	assert.Equal(t, "50", consumption.ConsumedAmount)

	out, err = run(t, e, "credits", "joao.silva", "--status", "active")
	require.NoError(t, err)
	var credits []api.EnergyCredit
	require.NoError(t, json.Unmarshal([]byte(out), &credits))
	require.Len(t, credits, 1)
	assert.Equal(t, "100.5", credits[0].Amount)

	_, err = run(t, e, "issue", "maria.souza", "NaN")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	out, err = run(t, e, "verify")
	require.NoError(t, err)
	assert.Equal(t, "checked 3 vaults, 0 inconsistent\n", out)

	out, err = run(t, e, "expire", "--before", "2000-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "expired 0 credits"))
}

func TestPlantCommands(t *testing.T) {
	e := newTestEnv(t)

	out, err := run(t, e, "plants")
	require.NoError(t, err)
	var snaps []api.PlantSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	assert.Len(t, snaps, 3)

	_, err = run(t, e, "plants", "plant_unknown")
	assert.Error(t, err)
}

func TestEventCommands(t *testing.T) {
	e := newTestEnv(t)

	_, err := run(t, e, "publish-generation", "joao.silva", "12.5", "--plant", "plant_alpha")
	require.NoError(t, err)
	writer := e.generation.(*recordingWriter)
	require.Len(t, writer.msgs, 1)
	var event messaging.GenerationEvent
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &event))
	assert.Equal(t, "plant_alpha", event.PlantID)

	_, err = run(t, e, "schedule-consumption", "joao.silva", "10", "inv_9")
	require.NoError(t, err)
	assert.Equal(t, []scheduler.ConsumptionRequest{{CustomerID: "joao.silva", Amount: "10", InvoiceID: "inv_9"}},
		e.consumption.(*recordingScheduler).reqs)
}
