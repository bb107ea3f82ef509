package scheduler

import (
	"context"
)

// ConsumptionRequest asks for an invoice's kWh to be consumed from a customer's vault.
// Amount is a decimal string so no precision is lost on the queue.
type ConsumptionRequest struct {
	CustomerID string `json:"customer_id"`
	Amount     string `json:"amount"`
	InvoiceID  string `json:"invoice_id"`
}

// Scheduler defines the interface for a component that schedules a consumption for later processing.
type Scheduler interface {
	// ScheduleConsumption enqueues a consumption request for asynchronous processing.
	ScheduleConsumption(ctx context.Context, req ConsumptionRequest) error
}
