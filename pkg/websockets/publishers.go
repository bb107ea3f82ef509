package websockets

import (
	"context"
	"errors"
)

// NoOpPublisher discards every message.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, message Message) error {
	return nil
}

// Fanout publishes every message to each of its publishers.
type Fanout []Publisher

// Publish delivers to all publishers and joins their errors.
func (f Fanout) Publish(ctx context.Context, message Message) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
