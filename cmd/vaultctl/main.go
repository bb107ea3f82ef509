package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/energy-vault/pkg/bootstrap"
	"github.com/chris/energy-vault/pkg/config"
	"github.com/chris/energy-vault/pkg/jobs"
	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/logging"
	"github.com/chris/energy-vault/pkg/messaging"
	"github.com/chris/energy-vault/pkg/scheduler"
	"github.com/chris/energy-vault/pkg/telemetry"
	"github.com/spf13/cobra"
)

// env is what every command runs against.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	ledger    *ledger.Service
	telemetry *telemetry.Service
	jobs      *jobs.Jobs

	// Optional transports, built on first use.
	generation  messaging.MessageWriter
	consumption scheduler.Scheduler

	close func()
}

// opener builds the env from configuration.
type opener func(ctx context.Context) (*env, error)

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	// Operator output goes to stdout; logs stay on stderr.
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel, "text")

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	l, err := bootstrap.NewLedger(ctx, cfg, stores, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}
	t, err := bootstrap.NewTelemetry(ctx, cfg, stores, logger)
	if err != nil {
		stores.Close()
		return nil, err
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		ledger:    l,
		telemetry: t,
		jobs:      jobs.NewJobs(l, t, cfg.CreditTTL(), logger),
		close:     stores.Close,
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := messaging.NewGenerationWriter(cfg.KafkaBrokers, cfg.KafkaGenerationTopic)
		e.generation = w
		e.close = func() { w.Close(); stores.Close() }
	}
	if cfg.SQSQueueURL != "" && stores.AWS != nil {
		e.consumption = scheduler.NewSQSScheduler(sqs.NewFromConfig(*stores.AWS), cfg.SQSQueueURL)
	}
	return e, nil
}

func newRootCmd(open opener) *cobra.Command {
	var e *env

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Operate energy credit vaults",
		Long:          `vaultctl inspects and adjusts customer energy credit vaults and plant telemetry using the same configuration as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			e, err = open(cmd.Context())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e != nil && e.close != nil {
				e.close()
			}
		},
	}

	current := func() *env { return e }
	root.AddCommand(vaultCommands(current)...)
	root.AddCommand(plantCommands(current)...)
	root.AddCommand(eventCommands(current)...)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(openEnv).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
