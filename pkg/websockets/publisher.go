package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// PostToConnectionAPI is the subset of the API Gateway management client the publisher uses.
type PostToConnectionAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// DefaultPublisher pushes messages to API Gateway websocket connections.
type DefaultPublisher struct {
	conns  Connections
	client PostToConnectionAPI
	logger *slog.Logger
}

// NewPublisher creates a DefaultPublisher bound to the websocket API endpoint.
func NewPublisher(cfg aws.Config, conns Connections, apiEndpoint string, logger *slog.Logger) *DefaultPublisher {
	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
	return NewPublisherWithClient(client, conns, logger)
}

// NewPublisherWithClient creates a DefaultPublisher around an existing management client.
func NewPublisherWithClient(client PostToConnectionAPI, conns Connections, logger *slog.Logger) *DefaultPublisher {
	return &DefaultPublisher{conns: conns, client: client, logger: logger}
}

// Make sure we conform to the interface
var _ Publisher = (*DefaultPublisher)(nil)

// Publish sends a message to all connected clients. Gone connections are removed.
func (p *DefaultPublisher) Publish(ctx context.Context, message Message) error {
	connectionIDs, err := p.conns.GetAllConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to get all connections: %w", err)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := p.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err == nil {
			continue
		}

		var goneErr *apigwtypes.GoneException
		if errors.As(err, &goneErr) {
			p.logger.Info("stale connection found, deleting", "connectionId", connectionID)
			if err := p.conns.RemoveConnection(ctx, connectionID); err != nil {
				p.logger.Error("failed to delete stale connection", "connectionId", connectionID, "error", err)
			}
			continue
		}
		p.logger.Error("failed to post to connection", "connectionId", connectionID, "error", err)
	}

	return nil
}
