package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/segmentio/kafka-go"
)

// GenerationEvent reports kWh generated by a plant on a customer's behalf.
// PlantID and OccurredAt together identify a generation; a redelivered event with
// both set is credited once.
type GenerationEvent struct {
	CustomerID  string    `json:"customer_id"`
	PlantID     string    `json:"plant_id"`
	Amount      string    `json:"amount"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// IssueRequest converts the event into a ledger request. Source defaults to solar generation.
func (e GenerationEvent) IssueRequest() (ledger.IssueRequest, error) {
	amount, err := ledger.ParseAmount("amount", e.Amount)
	if err != nil {
		return ledger.IssueRequest{}, err
	}
	source := models.CreditSource(e.Source)
	if source == "" {
		source = models.SourceSolarGeneration
	}
	description := e.Description
	if description == "" && e.PlantID != "" {
		description = fmt.Sprintf("Solar generation - plant %s", e.PlantID)
	}
	return ledger.IssueRequest{
		CustomerID:  e.CustomerID,
		Amount:      amount,
		Source:      source,
		Description: description,
		Reference:   e.Reference(),
	}, nil
}

// Reference is the issuance idempotency key, empty when the event cannot be identified.
func (e GenerationEvent) Reference() string {
	if e.PlantID == "" || e.OccurredAt.IsZero() {
		return ""
	}
	return fmt.Sprintf("generation:%s:%s", e.PlantID, e.OccurredAt.UTC().Format(time.RFC3339Nano))
}

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewGenerationReader creates a consumer-group reader for the generation topic.
func NewGenerationReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0,
	})
}

// GenerationConsumer turns generation events into issued credits.
type GenerationConsumer struct {
	reader MessageReader
	issuer Issuer
	logger *slog.Logger
}

// NewGenerationConsumer creates a GenerationConsumer.
func NewGenerationConsumer(reader MessageReader, issuer Issuer, logger *slog.Logger) *GenerationConsumer {
	return &GenerationConsumer{reader: reader, issuer: issuer, logger: logger}
}

// Run consumes until ctx is cancelled. Malformed and invalid events are logged and
// committed. Any other failure stops Run with the offset uncommitted, so the event
// is delivered again when the worker restarts.
func (c *GenerationConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch generation event: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit generation event: %w", err)
		}
	}
}

func (c *GenerationConsumer) handle(ctx context.Context, msg kafka.Message) error {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset)

	var event GenerationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("dropping malformed generation event", "error", err)
		return nil
	}

	req, err := event.IssueRequest()
	if err != nil {
		log.Error("dropping invalid generation event", "customerId", event.CustomerID, "error", err)
		return nil
	}

	var credit *models.EnergyCredit
	err = retryOnConflict(ctx, func() error {
		var err error
		credit, err = c.issuer.IssueCredit(ctx, req)
		return err
	})
	if isValidation(err) {
		log.Error("dropping invalid generation event", "customerId", event.CustomerID, "error", err)
		return nil
	}
	if errors.Is(err, ledger.ErrDuplicateIssue) {
		log.Info("skipping already credited generation event",
			"customerId", event.CustomerID,
			"plantId", event.PlantID,
			"occurredAt", event.OccurredAt,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to issue credit for customer %s: %w", event.CustomerID, err)
	}

	log.Info("generation event credited",
		"customerId", event.CustomerID,
		"plantId", event.PlantID,
		"creditId", credit.ID,
		"amount", credit.Amount.String(),
		"occurredAt", event.OccurredAt,
	)
	return nil
}

// MessageWriter is the part of *kafka.Writer used to publish events.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewGenerationWriter creates a writer for the generation topic.
func NewGenerationWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// PublishGeneration writes the event keyed by customer ID, keeping a customer's events in one partition.
func PublishGeneration(ctx context.Context, w MessageWriter, event GenerationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(event.CustomerID), Value: body}); err != nil {
		return fmt.Errorf("failed to publish generation event: %w", err)
	}
	return nil
}
