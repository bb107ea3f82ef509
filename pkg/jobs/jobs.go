package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/energy-vault/pkg/ledger"
)

// Ledger is what the periodic jobs need from the ledger service.
type Ledger interface {
	ExpireAll(ctx context.Context, cutoff time.Time) (ledger.SweepSummary, error)
	ListCustomers(ctx context.Context) ([]string, error)
	Verify(ctx context.Context, customerID string) (*ledger.VerifyReport, error)
}

// Telemetry refreshes plant readings.
type Telemetry interface {
	RefreshAll(ctx context.Context) error
}

var _ Ledger = (*ledger.Service)(nil)

const jobTimeout = 5 * time.Minute

// AuditSummary is the outcome of verifying every vault.
type AuditSummary struct {
	Checked      int
	Inconsistent []string
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	ledger    Ledger
	telemetry Telemetry
	creditTTL time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewJobs creates a Jobs runner. A zero creditTTL disables expiry. telemetry may be nil.
func NewJobs(l Ledger, t Telemetry, creditTTL time.Duration, logger *slog.Logger) *Jobs {
	return &Jobs{
		ledger:    l,
		telemetry: t,
		creditTTL: creditTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// RunExpiry expires every active credit older than the credit TTL.
func (j *Jobs) RunExpiry(ctx context.Context) (ledger.SweepSummary, error) {
	if j.creditTTL <= 0 {
		return ledger.SweepSummary{}, nil
	}
	cutoff := j.now().UTC().Add(-j.creditTTL)
	return j.ledger.ExpireAll(ctx, cutoff)
}

// RunAudit verifies every vault and lists the customers whose totals disagree.
func (j *Jobs) RunAudit(ctx context.Context) (AuditSummary, error) {
	var summary AuditSummary

	customers, err := j.ledger.ListCustomers(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list customers: %w", err)
	}

	var errs []error
	for _, customerID := range customers {
		report, err := j.ledger.Verify(ctx, customerID)
		if err != nil {
			errs = append(errs, fmt.Errorf("customer %s: %w", customerID, err))
			continue
		}
		summary.Checked++
		if !report.Consistent {
			summary.Inconsistent = append(summary.Inconsistent, customerID)
			j.logger.Error("vault inconsistent", "customerId", customerID, "problems", report.Problems)
		}
	}
	return summary, errors.Join(errs...)
}

// ExpireCredits is the cron entry for RunExpiry.
func (j *Jobs) ExpireCredits() {
	if j.creditTTL <= 0 {
		return
	}
	j.logger.Info("starting credit expiry job")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summary, err := j.RunExpiry(ctx)
	if err != nil {
		j.logger.Error("credit expiry job finished with errors", "error", err)
	}
	j.logger.Info("credit expiry job finished",
		"customers", summary.Customers,
		"credits", summary.Credits,
		"amount", summary.Amount.String(),
	)
}

// RefreshTelemetry is the cron entry for the plant simulator.
func (j *Jobs) RefreshTelemetry() {
	if j.telemetry == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := j.telemetry.RefreshAll(ctx); err != nil {
		j.logger.Error("telemetry refresh job failed", "error", err)
	}
}

// AuditVaults is the cron entry for RunAudit.
func (j *Jobs) AuditVaults() {
	j.logger.Info("starting vault audit job")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summary, err := j.RunAudit(ctx)
	if err != nil {
		j.logger.Error("vault audit job finished with errors", "error", err)
	}
	j.logger.Info("vault audit job finished", "checked", summary.Checked, "inconsistent", len(summary.Inconsistent))
}
