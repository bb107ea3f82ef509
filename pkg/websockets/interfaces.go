package websockets

import "context"

// Connections is the registry a publisher fans out over.
// storage.ConnectionRegistry satisfies it.
type Connections interface {
	AddConnection(ctx context.Context, connectionID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	GetAllConnections(ctx context.Context) ([]string, error)
}

// Publisher delivers a message to every subscriber it knows about. Failures on
// individual connections are logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}
