package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chris/energy-vault/pkg/jobs"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/chris/energy-vault/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRequest(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Credits issued two years ago are past a one year TTL.
	issuedAt := time.Now().UTC().AddDate(-2, 0, 0)
	svc := ledger.New(memory.New(), ledger.WithLogger(logger), ledger.WithClock(func() time.Time { return issuedAt }))
	for _, id := range []string{"joao.silva", "maria.souza"} {
		_, err := svc.IssueCredit(ctx, ledger.IssueRequest{
			CustomerID: id,
			Amount:     decimal.NewFromInt(10),
			Source:     models.SourceSolarGeneration,
		})
		require.NoError(t, err)
	}

	h := &handler{jobs: jobs.NewJobs(svc, nil, 365*24*time.Hour, logger), logger: logger}
	report, err := h.HandleRequest(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.ExpiredCustomers)
	assert.Equal(t, 2, report.ExpiredCredits)
	assert.Equal(t, "20", report.ExpiredAmount)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Inconsistent)

	balance, err := svc.GetAvailableBalance(ctx, "joao.silva")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
