package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitInvoices consumes paid invoices from one queue and publishes results to another.
type RabbitInvoices struct {
	conn        *amqp.Connection
	in          *amqp.Channel
	out         *amqp.Channel
	queue       string
	resultQueue string
}

// DialRabbit connects and declares both durable queues. prefetch bounds unacked deliveries.
func DialRabbit(amqpURL, queue, resultQueue string, prefetch int) (*RabbitInvoices, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	r := &RabbitInvoices{conn: conn, queue: queue, resultQueue: resultQueue}
	if r.in, err = conn.Channel(); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to open consume channel: %w", err)
	}
	if r.out, err = conn.Channel(); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to open publish channel: %w", err)
	}

	for _, q := range []struct {
		ch   *amqp.Channel
		name string
	}{{r.in, queue}, {r.out, resultQueue}} {
		if _, err := q.ch.QueueDeclare(
			q.name, // name
			true,   // durable
			false,  // delete when unused
			false,  // exclusive
			false,  // no-wait
			nil,    // arguments
		); err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", q.name, err)
		}
	}

	if err := r.in.Qos(prefetch, 0, false); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}
	return r, nil
}

// Deliveries starts consuming with manual acknowledgement.
func (r *RabbitInvoices) Deliveries() (<-chan amqp.Delivery, error) {
	msgs, err := r.in.Consume(
		r.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", r.queue, err)
	}
	return msgs, nil
}

// PublishResult implements ResultPublisher.
func (r *RabbitInvoices) PublishResult(ctx context.Context, result InvoiceCredited) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice result: %w", err)
	}
	return r.out.PublishWithContext(ctx,
		"",            // exchange
		r.resultQueue, // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    result.InvoiceID,
			Timestamp:    time.Now(),
			Body:         body,
		})
}

// Close closes both channels and the connection.
func (r *RabbitInvoices) Close() {
	if r.in != nil {
		r.in.Close()
	}
	if r.out != nil {
		r.out.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("invalid AMQP URL: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", fmt.Errorf("invalid AMQP scheme: %q", u.Scheme)
	}
	return clean, nil
}
