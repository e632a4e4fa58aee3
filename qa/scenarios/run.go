package scenarios

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/core/simulator"
	"github.com/kilianp07/milkrun/infra/logger"
	"github.com/kilianp07/milkrun/infra/metrics"
	"github.com/kilianp07/milkrun/internal/eventbus"
)

const plansTotal = `
# HELP milkrun_plans_total Number of computed plans
# TYPE milkrun_plans_total counter
milkrun_plans_total 1
`

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New[simulator.Plan](1)
	defer bus.Close()
	planner, err := simulator.NewPlanner(logger.NopLogger{}, sink, bus)
	if err != nil {
		t.Fatalf("planner: %v", err)
	}

	plan, err := planner.Plan(context.Background(), sc.Config)
	if err != nil {
		t.Fatalf("scenario %s: plan: %v", sc.Name, err)
	}
	if latest, ok := bus.Latest(); !ok || latest.RunID != plan.RunID {
		t.Errorf("scenario %s: plan not published on the bus", sc.Name)
	}
	if err := testutil.GatherAndCompare(reg, strings.NewReader(plansTotal), "milkrun_plans_total"); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}

	exp := sc.Expected
	if got := plan.Schedule.Len(); got != exp.Pickups {
		t.Errorf("scenario %s expected %d pickups, got %d", sc.Name, exp.Pickups, got)
	}
	if exp.OverCapacity != nil && plan.Summary.OverCapacity != *exp.OverCapacity {
		t.Errorf("scenario %s expected %d over capacity pickups, got %d", sc.Name, *exp.OverCapacity, plan.Summary.OverCapacity)
	}
	if exp.Suggested != nil && plan.Advice.Suggested != *exp.Suggested {
		t.Errorf("scenario %s expected suggested fleet %d, got %d", sc.Name, *exp.Suggested, plan.Advice.Suggested)
	}
	if exp.FinalBuffer != nil && math.Abs(plan.Summary.FinalBuffer-*exp.FinalBuffer) > 1e-6 {
		t.Errorf("scenario %s expected final buffer %.3f, got %.3f", sc.Name, *exp.FinalBuffer, plan.Summary.FinalBuffer)
	}
	for _, def := range exp.Entries {
		if err := checkEntry(plan.Schedule, def); err != nil {
			t.Errorf("scenario %s: %v", sc.Name, err)
		}
	}
	for _, s := range exp.Empty {
		var slot model.TimeSlot
		if err := slot.UnmarshalText([]byte(s)); err != nil {
			t.Errorf("scenario %s: %v", sc.Name, err)
			continue
		}
		if e, ok := plan.Schedule[slot]; ok {
			t.Errorf("scenario %s expected %s empty, got %s", sc.Name, slot, e.VehicleName)
		}
	}
}

func checkEntry(s model.Schedule, def PickupDef) error {
	slot, reason, err := def.ToModel()
	if err != nil {
		return err
	}
	e, ok := s[slot]
	if !ok {
		return fmt.Errorf("no pickup at %s", slot)
	}
	if e.VehicleName != def.Vehicle || e.Reason != reason || e.QuantityRemaining != def.Remaining {
		return fmt.Errorf("pickup at %s: got %s/%s/%d, want %s/%s/%d", slot,
			e.VehicleName, e.Reason, e.QuantityRemaining, def.Vehicle, reason, def.Remaining)
	}
	return nil
}
