package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/logging"
	"github.com/chris/energy-vault/pkg/scheduler"
	"github.com/shopspring/decimal"
)

// Consumer is the ledger operation this Lambda drives.
type Consumer interface {
	ConsumeCredits(ctx context.Context, customerID string, amount decimal.Decimal, invoiceID string) (*ledger.ConsumptionResult, error)
}

type handler struct {
	consumer Consumer
	logger   *slog.Logger
}

// HandleRequest consumes credits for each queued request. Failed records are reported
// individually so SQS redelivers only those; invalid requests are dropped because
// retrying them cannot succeed.
func (h *handler) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, message := range sqsEvent.Records {
		logger := h.logger.With("messageId", message.MessageId)

		var req scheduler.ConsumptionRequest
		if err := json.Unmarshal([]byte(message.Body), &req); err != nil {
			logger.Error("dropping malformed consumption request", "error", err)
			continue
		}
		logger = logger.With("customerId", req.CustomerID, "invoiceId", req.InvoiceID)

		amount, err := ledger.ParseAmount("amount", req.Amount)
		if err == nil {
			var res *ledger.ConsumptionResult
			res, err = h.consumer.ConsumeCredits(ctx, req.CustomerID, amount, req.InvoiceID)
			if err == nil {
				logger.Info("consumption settled",
					"consumed", res.ConsumedAmount.String(),
					"shortfall", res.Shortfall.String(),
					"replayed", res.Replayed,
				)
				continue
			}
		}

		var verr *ledger.ValidationError
		if errors.As(err, &verr) {
			logger.Error("dropping invalid consumption request", "error", err)
			continue
		}

		logger.Error("failed to settle consumption, will retry", "error", err)
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
	}

	return resp, nil
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

	// Sample data belongs to local development, never to the queue consumer.
	cfg.SeedSampleData = false
	vaults, err := bootstrap.NewLedger(ctx, cfg, stores, logger)
	if err != nil {
		log.Fatalf("failed to create ledger: %v", err)
	}

	h := &handler{consumer: vaults, logger: logger}
	lambda.Start(h.HandleRequest)
}
