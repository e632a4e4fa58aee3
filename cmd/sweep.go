package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/milkrun/core/simulator"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Simulate every fleet size from 0 to --max and compare them",
	RunE:  runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.Int("max", 0, "largest fleet size to simulate (default from config)")
	f.Int("workers", 0, "concurrent simulations (default from config)")
	f.Float64("production", 0, "daily production in kg")
	f.Float64("initial", 0, "initial storage in kg")
	f.Float64("trip", 0, "round trip duration in hours")
	f.Float64("weekly", 0, "weekly working hours per vehicle")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("max") {
		cfg.Sweep.MaxFleet, _ = cmd.Flags().GetInt("max")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Sweep.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return err
	}

	results, err := simulator.Sweep(ctx, cfg.Simulation, simulator.FleetRange(cfg.Sweep.MaxFleet), cfg.Sweep.Workers)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "fleet\tpickups\tover_capacity\toverflow_slots\tpeak_kg\tfinal_kg\tutilisation")
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.0f\t%.0f\t%.2f\n",
			r.FleetSize, s.Pickups, s.OverCapacity, s.OverflowSlots, s.PeakBuffer, s.FinalBuffer, s.Utilisation)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n, ok := simulator.SmallestOverflowFree(results); ok {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "smallest overflow-free fleet: %d\n", n)
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "no fleet up to %d keeps storage within capacity\n", cfg.Sweep.MaxFleet)
	}
	return err
}
