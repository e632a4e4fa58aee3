package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/milkrun/config"
	"github.com/kilianp07/milkrun/core/simulator"
	"github.com/kilianp07/milkrun/infra/logger"
	"github.com/kilianp07/milkrun/pkg/export"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the pickup schedule for the planning horizon",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.Int("fleet", 0, "number of vehicles")
	f.Float64("production", 0, "daily production in kg")
	f.Float64("initial", 0, "initial storage in kg")
	f.Float64("trip", 0, "round trip duration in hours")
	f.Float64("weekly", 0, "weekly working hours per vehicle")
	f.String("format", "", "output format: grid, csv or json")
	f.StringP("output", "o", "", "output file (default stdout)")
	f.Bool("trace", false, "include the per-slot buffer trace in json output")
	rootCmd.AddCommand(planCmd)
}

// applyOverrides copies explicitly set flags onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	floats := map[string]*float64{
		"production": &cfg.Simulation.DailyProduction,
		"initial":    &cfg.Simulation.InitialStorage,
		"trip":       &cfg.Simulation.TripDurationHours,
		"weekly":     &cfg.Simulation.WeeklyWorkHours,
	}
	for name, dst := range floats {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if f.Changed("fleet") {
		n, err := f.GetInt("fleet")
		if err != nil {
			return err
		}
		cfg.Simulation = cfg.Simulation.WithFleetSize(n)
	}
	if f.Changed("format") {
		cfg.Export.Format, _ = f.GetString("format")
	}
	if f.Changed("output") {
		cfg.Export.Path, _ = f.GetString("output")
	}
	if f.Changed("trace") {
		cfg.Export.Trace, _ = f.GetBool("trace")
	}
	return cfg.Validate()
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}
	planner, err := simulator.NewPlanner(logger.New("plan-command"), nil, nil)
	if err != nil {
		return err
	}
	plan, err := planner.Plan(ctx, cfg.Simulation)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cmd, cfg.Export.Path)
	if err != nil {
		return err
	}
	if err := export.Write(w, cfg.Export.Format, plan, cfg.Export.Trace); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return err
	}
	if cfg.Export.Format == "grid" && cfg.Export.Path == "" {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", plan.Advice.Message())
	}
	return err
}
