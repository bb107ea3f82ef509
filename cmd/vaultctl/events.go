package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/messaging"
	"github.com/chris/energy-vault/pkg/scheduler"
	"github.com/spf13/cobra"
)

func eventCommands(e func() *env) []*cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish-generation CUSTOMER_ID AMOUNT",
		Short: "Publish a generation event to Kafka for the generation worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e().generation == nil {
				return errors.New("KAFKA_BROKERS is not set")
			}
			if _, err := ledger.ParseAmount("amount", args[1]); err != nil {
				return err
			}
			plant, _ := cmd.Flags().GetString("plant")
			source, _ := cmd.Flags().GetString("source")

			event := messaging.GenerationEvent{
				CustomerID: args[0],
				PlantID:    plant,
				Amount:     args[1],
				Source:     source,
				OccurredAt: time.Now().UTC(),
			}
			if err := messaging.PublishGeneration(cmd.Context(), e().generation, event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s kWh for %s\n", args[1], args[0])
			return nil
		},
	}
	publishCmd.Flags().String("plant", "", "Plant that generated the energy")
	publishCmd.Flags().String("source", "", "Credit source, defaults to solar_generation")

	scheduleCmd := &cobra.Command{
		Use:   "schedule-consumption CUSTOMER_ID AMOUNT INVOICE_ID",
		Short: "Queue an invoice consumption on SQS for the consumption Lambda",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e().consumption == nil {
				return errors.New("SQS_QUEUE_URL is not set")
			}
			if _, err := ledger.ParseAmount("amount", args[1]); err != nil {
				return err
			}
			req := scheduler.ConsumptionRequest{CustomerID: args[0], Amount: args[1], InvoiceID: args[2]}
			if err := e().consumption.ScheduleConsumption(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued invoice %s for %s\n", args[2], args[0])
			return nil
		},
	}

	return []*cobra.Command{publishCmd, scheduleCmd}
}
