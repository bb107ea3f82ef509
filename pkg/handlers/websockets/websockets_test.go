package websockets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

type recordingManager struct {
	added, removed []string
	err            error
}

func (m *recordingManager) AddConnection(ctx context.Context, id string) error {
	m.added = append(m.added, id)
	return m.err
}

func (m *recordingManager) RemoveConnection(ctx context.Context, id string) error {
	m.removed = append(m.removed, id)
	return m.err
}

func (m *recordingManager) GetAllConnections(ctx context.Context) ([]string, error) {
	return m.added, m.err
}

func request(id string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{ConnectionID: id},
	}
}

func TestLambdaRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Connect And Disconnect", func(t *testing.T) {
		m := &recordingManager{}
		h := NewHandler(m, nil, logger)

		resp, err := h.HandleConnect(context.Background(), request("c1"))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = h.HandleDisconnect(context.Background(), request("c1"))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, []string{"c1"}, m.added)
		assert.Equal(t, []string{"c1"}, m.removed)
	})

	t.Run("Store Failure", func(t *testing.T) {
		h := NewHandler(&recordingManager{err: errors.New("boom")}, nil, logger)

		resp, err := h.HandleConnect(context.Background(), request("c1"))

		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}
