package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	wshandlers "github.com/chris/energy-vault/pkg/handlers/websockets"
	"github.com/chris/energy-vault/pkg/logging"
)

type router struct {
	handler *wshandlers.Handler
}

// HandleRequest dispatches API Gateway websocket routes to the subscriber handler.
func (r *router) HandleRequest(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$connect":
		return r.handler.HandleConnect(ctx, request)
	case "$disconnect":
		return r.handler.HandleDisconnect(ctx, request)
	case "$default":
		return r.handler.HandleDefault(ctx, request)
	default:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	stores, err := bootstrap.OpenStores(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}

	r := &router{handler: wshandlers.NewHandler(stores.Connections, nil, logger)}
	lambda.Start(r.HandleRequest)
}
