package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/energy-vault/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler manages vault update subscribers, both API Gateway websocket
// connections and local gorilla connections.
type Handler struct {
	conns  websockets.Connections
	hub    *websockets.LocalHub
	logger *slog.Logger
}

// NewHandler creates a new Handler. hub may be nil when only API Gateway routes are served.
func NewHandler(conns websockets.Connections, hub *websockets.LocalHub, logger *slog.Logger) *Handler {
	return &Handler{conns: conns, hub: hub, logger: logger}
}

// HandleConnect records a new API Gateway connection.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	h.logger.Info("subscriber connected", "connectionId", connectionID)

	if err := h.conns.AddConnection(ctx, connectionID); err != nil {
		h.logger.Error("failed to save connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect forgets an API Gateway connection.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	h.logger.Info("subscriber disconnected", "connectionId", connectionID)

	if err := h.conns.RemoveConnection(ctx, connectionID); err != nil {
		h.logger.Error("failed to delete connection ID", "connectionId", connectionID, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault accepts and ignores client messages; the feed is server to client only.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("ignoring client message", "connectionId", request.RequestContext.ConnectionID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

var upgrader = websocket.Upgrader{
	// Local development only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeHTTP upgrades a local connection and keeps it subscribed until the client goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connectionID := uuid.New().String()
	h.logger.Info("local subscriber connected", "connectionId", connectionID)
	if h.hub != nil {
		h.hub.Register(connectionID, conn)
		defer h.hub.Unregister(connectionID)
	}

	ctx := context.WithoutCancel(r.Context())
	if err := h.conns.AddConnection(ctx, connectionID); err != nil {
		h.logger.Error("failed to save local connection ID", "error", err)
		return
	}
	defer func() {
		h.logger.Info("local subscriber disconnected", "connectionId", connectionID)
		if err := h.conns.RemoveConnection(ctx, connectionID); err != nil {
			h.logger.Error("failed to delete local connection ID", "error", err)
		}
	}()

	// Reading is how a close from the client is detected.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("unexpected close", "connectionId", connectionID, "error", err)
			}
			return
		}
	}
}
