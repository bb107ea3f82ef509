package main

import (
	"github.com/chris/energy-vault/pkg/api"
	"github.com/chris/energy-vault/pkg/mapping"
	"github.com/spf13/cobra"
)

func plantCommands(e func() *env) []*cobra.Command {
	plantsCmd := &cobra.Command{
		Use:   "plants [PLANT_ID]",
		Short: "Show plant snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				snap, err := e().telemetry.Snapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), mapping.ToApiPlantSnapshot(snap))
			}

			snaps, err := e().telemetry.Snapshots(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]api.PlantSnapshot, 0, len(snaps))
			for i := range snaps {
				out = append(out, *mapping.ToApiPlantSnapshot(&snaps[i]))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh PLANT_ID",
		Short: "Simulate a fresh reading for every inverter of a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := e().telemetry.Refresh(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := make([]api.InverterReading, 0, len(readings))
			for i := range readings {
				out = append(out, *mapping.ToApiReading(&readings[i]))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	return []*cobra.Command{plantsCmd, refreshCmd}
}
