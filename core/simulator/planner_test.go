package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/milkrun/core/metrics"
	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/infra/logger"
	"github.com/kilianp07/milkrun/internal/eventbus"
)

type captureSink struct {
	plans    []metrics.PlanEvent
	rejected []string
}

func (c *captureSink) RecordPlan(ev metrics.PlanEvent) error {
	c.plans = append(c.plans, ev)
	return nil
}

func (c *captureSink) RecordRejected(field string) error {
	c.rejected = append(c.rejected, field)
	return nil
}

func newTestPlanner(t *testing.T, sink metrics.MetricsSink, bus *eventbus.Bus[Plan]) *Planner {
	t.Helper()
	p, err := NewPlanner(logger.NopLogger{}, sink, bus)
	require.NoError(t, err)
	fixed := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }
	p.newID = func() string { return "run-1" }
	return p
}

func TestPlannerPlan(t *testing.T) {
	sink := &captureSink{}
	bus := eventbus.New[Plan](1)
	sub := bus.Subscribe()
	p := newTestPlanner(t, sink, bus)

	plan, err := p.Plan(context.Background(), referenceConfig())
	require.NoError(t, err)
	assert.Equal(t, "run-1", plan.RunID)
	assert.Equal(t, 4, plan.Advice.Suggested)
	assert.False(t, plan.Advice.Sufficient)
	assert.Equal(t, 15, plan.Schedule.Len())
	assert.Len(t, plan.Trace, 30)

	require.Len(t, sink.plans, 1)
	ev := sink.plans[0]
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, 3, ev.FleetSize)
	assert.Equal(t, 15, ev.Pickups)
	assert.Len(t, ev.Entries, 15)

	published := <-sub
	assert.Equal(t, plan.RunID, published.RunID)
}

func TestPlannerRejectsConfig(t *testing.T) {
	sink := &captureSink{}
	bus := eventbus.New[Plan](1)
	p := newTestPlanner(t, sink, bus)

	cfg := referenceConfig()
	cfg.WeeklyWorkHours = 0
	_, err := p.Plan(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))
	assert.Equal(t, []string{"weekly_work_hours"}, sink.rejected)
	assert.Empty(t, sink.plans)
	_, ok := bus.Latest()
	assert.False(t, ok, "no stale plan is published")
}

func TestPlannerCanceledContext(t *testing.T) {
	p := newTestPlanner(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Plan(ctx, referenceConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPlannerRequiresLogger(t *testing.T) {
	_, err := NewPlanner(nil, nil, nil)
	assert.Error(t, err)
}
