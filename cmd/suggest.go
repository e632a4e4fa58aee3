package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/milkrun/core/advisor"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Estimate the fleet size needed for a week of production",
	RunE:  runSuggest,
}

func init() {
	f := suggestCmd.Flags()
	f.Int("fleet", 0, "number of vehicles")
	f.Float64("production", 0, "daily production in kg")
	f.Float64("trip", 0, "round trip duration in hours")
	f.Float64("weekly", 0, "weekly working hours per vehicle")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}
	adv, err := advisor.Assess(cfg.Simulation)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "weekly quantity: %.0f kg\ntrips needed: %d\nsuggested fleet size: %d\n",
		adv.WeeklyQuantity, adv.TripsNeeded, adv.Suggested); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, adv.Message())
	return err
}
