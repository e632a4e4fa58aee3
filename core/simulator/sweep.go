package simulator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/milkrun/core/model"
)

// SweepResult is the outcome for one candidate fleet size.
type SweepResult struct {
	FleetSize int            `json:"fleet_size"`
	Summary   Summary        `json:"summary"`
	Schedule  model.Schedule `json:"schedule"`
}

// Sweep simulates cfg once per fleet size. Runs share nothing, so they are
// spread over at most workers goroutines (unlimited when workers <= 0).
// Results keep the order of sizes.
func Sweep(ctx context.Context, cfg model.SimulationConfig, sizes []int, workers int) ([]SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]SweepResult, len(sizes))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, n := range sizes {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if n < 0 {
				return fmt.Errorf("fleet size %d: %w", n, model.ErrInvalidConfiguration)
			}
			res, err := Run(cfg.WithFleetSize(n))
			if err != nil {
				return fmt.Errorf("fleet size %d: %w", n, err)
			}
			out[i] = SweepResult{FleetSize: n, Summary: Summarize(res), Schedule: res.Schedule}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SmallestOverflowFree returns the smallest fleet size whose run never
// leaves the buffer above storage capacity after a pickup slot.
func SmallestOverflowFree(results []SweepResult) (int, bool) {
	best, found := 0, false
	for _, r := range results {
		if r.Summary.OverflowSlots == 0 && (!found || r.FleetSize < best) {
			best, found = r.FleetSize, true
		}
	}
	return best, found
}

// FleetRange returns the sizes 0..max inclusive.
func FleetRange(max int) []int {
	if max < 0 {
		return nil
	}
	sizes := make([]int, max+1)
	for i := range sizes {
		sizes[i] = i
	}
	return sizes
}
