package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/jobs"
	"github.com/chris/energy-vault/pkg/logging"
)

// Report is returned to the EventBridge invocation for inspection in the console.
type Report struct {
	ExpiredCustomers int      `json:"expired_customers"`
	ExpiredCredits   int      `json:"expired_credits"`
	ExpiredAmount    string   `json:"expired_amount"`
	Checked          int      `json:"checked"`
	Inconsistent     []string `json:"inconsistent,omitempty"`
}

type handler struct {
	jobs   *jobs.Jobs
	logger *slog.Logger
}

// HandleRequest is triggered by an EventBridge Schedule. It expires credits past their
// TTL and then verifies every vault. An inconsistent vault fails the invocation so the
// alarm on Lambda errors fires.
func (h *handler) HandleRequest(ctx context.Context) (Report, error) {
	h.logger.Info("starting reconciliation")

	sweep, sweepErr := h.jobs.RunExpiry(ctx)
	if sweepErr != nil {
		h.logger.Error("expiry sweep finished with errors", "error", sweepErr)
	}

	audit, auditErr := h.jobs.RunAudit(ctx)
	if auditErr != nil {
		h.logger.Error("vault audit finished with errors", "error", auditErr)
	}

	report := Report{
		ExpiredCustomers: sweep.Customers,
		ExpiredCredits:   sweep.Credits,
		ExpiredAmount:    sweep.Amount.String(),
		Checked:          audit.Checked,
		Inconsistent:     audit.Inconsistent,
	}
	h.logger.Info("reconciliation finished",
		"expiredCredits", report.ExpiredCredits,
		"expiredAmount", report.ExpiredAmount,
		"checked", report.Checked,
		"inconsistent", len(report.Inconsistent),
	)

	err := errors.Join(sweepErr, auditErr)
	if len(audit.Inconsistent) > 0 {
		err = errors.Join(err, errors.New("inconsistent vaults found"))
	}
	return report, err
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}

	cfg.SeedSampleData = false
	vaults, err := bootstrap.NewLedger(ctx, cfg, stores, logger)
	if err != nil {
		log.Fatalf("failed to create ledger: %v", err)
	}

	h := &handler{jobs: jobs.NewJobs(vaults, nil, cfg.CreditTTL(), logger), logger: logger}
	lambda.Start(h.HandleRequest)
}
