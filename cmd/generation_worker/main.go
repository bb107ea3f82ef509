package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/logging"
	"github.com/chris/energy-vault/pkg/messaging"
)

// The generation worker issues credits for metered generation read from Kafka.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS environment variable not set")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}
	defer stores.Close()

	cfg.SeedSampleData = false
	vaults, err := bootstrap.NewLedger(ctx, cfg, stores, logger)
	if err != nil {
		log.Fatalf("failed to create ledger: %v", err)
	}

	reader := messaging.NewGenerationReader(cfg.KafkaBrokers, cfg.KafkaGenerationTopic, cfg.KafkaGroupID)
	defer reader.Close()

	logger.Info("consuming generation events", "topic", cfg.KafkaGenerationTopic, "group", cfg.KafkaGroupID)
	if err := messaging.NewGenerationConsumer(reader, vaults, logger).Run(ctx); err != nil {
		logger.Error("generation worker stopped", "error", err)
		stores.Close()
		os.Exit(1)
	}
	logger.Info("generation worker stopped")
}
