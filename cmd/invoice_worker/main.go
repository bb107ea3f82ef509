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

// The invoice worker consumes credits for paid invoices from RabbitMQ and reports the
// covered amount on the result queue.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL environment variable not set")
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

	rabbit, err := messaging.DialRabbit(cfg.RabbitMQURL, cfg.InvoiceQueue, cfg.InvoiceResultQueue, cfg.WorkerConcurrency)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbit.Close()

	deliveries, err := rabbit.Deliveries()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	logger.Info("consuming paid invoices", "queue", cfg.InvoiceQueue, "workers", cfg.WorkerConcurrency)
	messaging.NewInvoiceWorker(vaults, rabbit, logger).Run(ctx, deliveries, cfg.WorkerConcurrency)
	logger.Info("invoice worker stopped")
}
