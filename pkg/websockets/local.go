package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// localWriteTimeout bounds a single write to a local connection.
const localWriteTimeout = 5 * time.Second

// LocalHub publishes messages to websocket connections held by this process.
// The local development server registers upgraded connections here.
type LocalHub struct {
	mu           sync.RWMutex
	conns        map[string]*localConn
	logger       *slog.Logger
	writeTimeout time.Duration
}

type localConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewLocalHub creates an empty hub.
func NewLocalHub(logger *slog.Logger) *LocalHub {
	return &LocalHub{conns: make(map[string]*localConn), logger: logger, writeTimeout: localWriteTimeout}
}

// Make sure we conform to the interface
var _ Publisher = (*LocalHub)(nil)

// Register attaches an upgraded connection under connectionID.
func (h *LocalHub) Register(connectionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[connectionID] = &localConn{conn: conn}
}

// Unregister detaches a connection.
func (h *LocalHub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connectionID)
}

// Publish writes the message to every registered connection. A connection whose
// write fails or misses the write deadline is closed and dropped.
func (h *LocalHub) Publish(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	targets := make(map[string]*localConn, len(h.conns))
	for id, c := range h.conns {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(payload, h.writeTimeout); err != nil {
			h.logger.Warn("dropping local connection after failed write", "connectionId", id, "error", err)
			h.drop(id, c)
		}
	}
	return nil
}

func (c *localConn) write(payload []byte, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// drop removes c unless the ID was re-registered to another connection meanwhile.
func (h *LocalHub) drop(id string, c *localConn) {
	h.mu.Lock()
	if h.conns[id] == c {
		delete(h.conns, id)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
