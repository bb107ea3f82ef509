package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/handlers"
	wshandlers "github.com/chris/energy-vault/pkg/handlers/websockets"
	"github.com/chris/energy-vault/pkg/jobs"
	"github.com/chris/energy-vault/pkg/logging"
	"github.com/chris/energy-vault/pkg/middleware"
	"github.com/chris/energy-vault/pkg/tracing"
	"github.com/chris/energy-vault/pkg/websockets"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTelEndpoint, cfg.OTelServiceName, logger)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	hub := websockets.NewLocalHub(logger)

	vaults, err := bootstrap.NewLedger(ctx, cfg, stores, logger, hub)
	if err != nil {
		logger.Error("failed to create ledger", "error", err)
		os.Exit(1)
	}

	plants, err := bootstrap.NewTelemetry(ctx, cfg, stores, logger)
	if err != nil {
		logger.Error("failed to create telemetry service", "error", err)
		os.Exit(1)
	}

	scheduler := jobs.NewScheduler(
		jobs.NewJobs(vaults, plants, cfg.CreditTTL(), logger),
		jobs.Schedules{
			Expiry:           cfg.ExpiryJobSchedule,
			TelemetryRefresh: cfg.TelemetryRefreshSchedule,
			Audit:            cfg.AuditJobSchedule,
		},
		logger,
	)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Metrics)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/ws", wshandlers.NewHandler(stores.Connections, hub, logger))

	// Use the generated function to mount our handler on the router
	api.HandlerFromMux(handlers.NewApiHandler(vaults, plants, logger), router)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, "energy-vault"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "error", err)
	}
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}
}
