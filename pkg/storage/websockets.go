package storage

import "context"

// ConnectionRegistry records the websocket connections subscribed to vault updates.
// IDs are opaque: API Gateway connection IDs in Lambda deployments, UUIDs for local sockets.
type ConnectionRegistry interface {
	AddConnection(ctx context.Context, connectionID string) error
	// RemoveConnection is a no-op for unknown IDs.
	RemoveConnection(ctx context.Context, connectionID string) error
	GetAllConnections(ctx context.Context) ([]string, error)
}
