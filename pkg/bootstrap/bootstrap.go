package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/energy-vault/pkg/cache"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/storage"
	dydbstore "github.com/chris/energy-vault/pkg/storage/dynamodb"
	"github.com/chris/energy-vault/pkg/storage/memory"
	mongostore "github.com/chris/energy-vault/pkg/storage/mongo"
	"github.com/chris/energy-vault/pkg/storage/postgres"
	"github.com/chris/energy-vault/pkg/telemetry"
	"github.com/chris/energy-vault/pkg/websockets"
)

// Stores holds the backends selected by configuration.
type Stores struct {
	Credits     storage.CreditStore
	Telemetry   storage.TelemetryStore
	Connections storage.ConnectionRegistry

	// AWS is set when any AWS service is configured.
	AWS *aws.Config

	closers []func()
}

// Close releases every backend in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func needsAWS(cfg *config.Config) bool {
	return cfg.StorageBackend == config.BackendDynamoDB || cfg.SQSQueueURL != "" || cfg.WebsocketAPIEndpoint != ""
}

// OpenStores connects the configured credit, telemetry and connection stores.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}

	if needsAWS(cfg) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load SDK config: %w", err)
		}
		s.AWS = &awsCfg
	}

	var mem *memory.Store
	local := func() *memory.Store {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		s.Credits = local()
		s.Connections = local()
	case config.BackendDynamoDB:
		store := dydbstore.New(dynamodb.NewFromConfig(*s.AWS),
			cfg.VaultsTable, cfg.CreditsTable, cfg.TransactionsTable, cfg.ConnectionsTable)
		s.Credits = store
		if cfg.ConnectionsTable != "" {
			s.Connections = store
		} else {
			s.Connections = local()
		}
	case config.BackendPostgres:
		store, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.Credits = store
		s.Connections = store
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	switch cfg.TelemetryBackend {
	case config.BackendMemory:
		s.Telemetry = local()
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close(context.Background()) })
		if err := store.EnsureIndexes(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.Telemetry = store
	default:
		s.Close()
		return nil, fmt.Errorf("unknown telemetry backend %q", cfg.TelemetryBackend)
	}

	logger.Info("stores opened", "storage", cfg.StorageBackend, "telemetry", cfg.TelemetryBackend)
	return s, nil
}

// NewLedger builds the ledger service over the opened stores. A Redis balance cache is
// attached when REDIS_ADDR is set, and vault updates go to the API Gateway websocket
// endpoint when configured, plus any extra publishers.
func NewLedger(ctx context.Context, cfg *config.Config, s *Stores, logger *slog.Logger, extra ...websockets.Publisher) (*ledger.Service, error) {
	opts := []ledger.Option{ledger.WithLogger(logger)}

	if cfg.RedisAddr != "" {
		balanceCache, client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB, cfg.BalanceTTL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		opts = append(opts, ledger.WithCache(balanceCache))
	}

	publishers := websockets.Fanout(extra)
	if cfg.WebsocketAPIEndpoint != "" && s.AWS != nil {
		publishers = append(publishers, websockets.NewPublisher(*s.AWS, s.Connections, cfg.WebsocketAPIEndpoint, logger))
	}
	if len(publishers) > 0 {
		opts = append(opts, ledger.WithPublisher(publishers))
	}

	svc := ledger.New(s.Credits, opts...)
	if cfg.SeedSampleData {
		if err := svc.Seed(ctx); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// NewTelemetry builds the telemetry service, seeding the sample fleet into an empty catalog when enabled.
func NewTelemetry(ctx context.Context, cfg *config.Config, s *Stores, logger *slog.Logger) (*telemetry.Service, error) {
	svc := telemetry.New(s.Telemetry, telemetry.WithLogger(logger))
	if !cfg.SeedSampleData {
		return svc, nil
	}

	plants, err := svc.ListPlants(ctx)
	if err != nil {
		return nil, err
	}
	if len(plants) == 0 {
		if err := svc.Seed(ctx); err != nil {
			return nil, err
		}
	}
	return svc, nil
}
