package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chris/energy-vault/pkg/ledger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// InvoicePaid asks for an invoice's kWh to be covered from the customer's credits.
type InvoicePaid struct {
	CustomerID string `json:"customer_id"`
	InvoiceID  string `json:"invoice_id"`
	Amount     string `json:"amount"`
}

// InvoiceCredited reports how much of an invoice the credits covered.
type InvoiceCredited struct {
	CustomerID string `json:"customer_id"`
	InvoiceID  string `json:"invoice_id"`
	Requested  string `json:"requested,omitempty"`
	Consumed   string `json:"consumed,omitempty"`
	Shortfall  string `json:"shortfall,omitempty"`
	Replayed   bool   `json:"replayed,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// ResultPublisher sends InvoiceCredited results downstream.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result InvoiceCredited) error
}

// InvoiceWorker consumes credits for paid invoices.
type InvoiceWorker struct {
	consumer  Consumer
	publisher ResultPublisher
	logger    *slog.Logger
}

// NewInvoiceWorker creates an InvoiceWorker.
func NewInvoiceWorker(consumer Consumer, publisher ResultPublisher, logger *slog.Logger) *InvoiceWorker {
	return &InvoiceWorker{consumer: consumer, publisher: publisher, logger: logger}
}

// Handle processes one message body. Rejected input yields an unsuccessful result and
// no error. A non-nil error means the message should be redelivered.
func (w *InvoiceWorker) Handle(ctx context.Context, body []byte) (InvoiceCredited, error) {
	var msg InvoicePaid
	if err := json.Unmarshal(body, &msg); err != nil {
		return InvoiceCredited{Error: "malformed message"}, nil
	}
	out := InvoiceCredited{CustomerID: msg.CustomerID, InvoiceID: msg.InvoiceID, Requested: msg.Amount}

	amount, err := ledger.ParseAmount("amount", msg.Amount)
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}

	var res *ledger.ConsumptionResult
	err = retryOnConflict(ctx, func() error {
		var err error
		res, err = w.consumer.ConsumeCredits(ctx, msg.CustomerID, amount, msg.InvoiceID)
		return err
	})
	if isValidation(err) {
		out.Error = err.Error()
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("failed to consume credits for invoice %s: %w", msg.InvoiceID, err)
	}

	out.Success = true
	out.Consumed = res.ConsumedAmount.String()
	out.Shortfall = res.Shortfall.String()
	out.Replayed = res.Replayed
	return out, nil
}

// Run starts concurrency workers over deliveries and blocks until the channel closes
// or ctx is cancelled. Deliveries must be consumed without auto-ack.
func (w *InvoiceWorker) Run(ctx context.Context, deliveries <-chan amqp.Delivery, concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					w.process(ctx, d)
				}
			}
		}()
	}
	wg.Wait()
}

func (w *InvoiceWorker) process(ctx context.Context, d amqp.Delivery) {
	result, err := w.Handle(ctx, d.Body)
	if err != nil {
		w.logger.Error("invoice consumption failed, requeueing", "invoiceId", result.InvoiceID, "error", err)
		_ = d.Nack(false, true)
		return
	}

	// Consumption is idempotent per invoice, so a requeue after a failed publish replays the same result.
	if err := w.publisher.PublishResult(ctx, result); err != nil {
		w.logger.Error("failed to publish invoice result, requeueing", "invoiceId", result.InvoiceID, "error", err)
		_ = d.Nack(false, true)
		return
	}

	if result.Success {
		w.logger.Info("invoice credited",
			"customerId", result.CustomerID,
			"invoiceId", result.InvoiceID,
			"consumed", result.Consumed,
			"shortfall", result.Shortfall,
		)
	} else {
		w.logger.Warn("invoice rejected", "invoiceId", result.InvoiceID, "reason", result.Error)
	}
	_ = d.Ack(false)
}
