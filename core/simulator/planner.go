package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/milkrun/core/advisor"
	"github.com/kilianp07/milkrun/core/logger"
	"github.com/kilianp07/milkrun/core/metrics"
	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/internal/eventbus"
)

// Plan is a computed schedule together with its context.
type Plan struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Config      model.SimulationConfig `json:"config"`
	Advice      advisor.Advice         `json:"advice"`
	Schedule    model.Schedule         `json:"schedule"`
	Summary     Summary                `json:"summary"`
	Trace       []SlotTrace            `json:"trace,omitempty"`
}

// Planner runs simulations on behalf of callers and reports them.
type Planner struct {
	log   logger.Logger
	sink  metrics.MetricsSink
	bus   *eventbus.Bus[Plan]
	now   func() time.Time
	newID func() string
}

// NewPlanner creates a planner. sink and bus may be nil.
func NewPlanner(log logger.Logger, sink metrics.MetricsSink, bus *eventbus.Bus[Plan]) (*Planner, error) {
	if log == nil {
		return nil, fmt.Errorf("simulator: nil logger provided to NewPlanner")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{
		log:   log,
		sink:  sink,
		bus:   bus,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}, nil
}

// Plan validates cfg, computes the schedule and fleet advice, records
// metrics and publishes the plan on the bus. A rejected configuration is
// returned to the caller and no plan is produced.
func (p *Planner) Plan(ctx context.Context, cfg model.SimulationConfig) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	if err := cfg.Validate(); err != nil {
		p.reject(err)
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	start := p.now()
	adv, err := advisor.Assess(cfg)
	if err != nil {
		p.reject(err)
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	res, err := Run(cfg)
	if err != nil {
		return Plan{}, fmt.Errorf("plan: %w", err)
	}
	sum := Summarize(res)
	plan := Plan{
		RunID:       p.newID(),
		GeneratedAt: start,
		Config:      res.Config,
		Advice:      adv,
		Schedule:    res.Schedule,
		Summary:     sum,
		Trace:       res.Trace,
	}

	p.log.Infow("plan computed", map[string]any{
		"run_id":        plan.RunID,
		"fleet_size":    res.Config.FleetSize,
		"suggested":     adv.Suggested,
		"pickups":       sum.Pickups,
		"over_capacity": sum.OverCapacity,
		"peak_buffer":   sum.PeakBuffer,
	})
	if !adv.Sufficient {
		p.log.Warnf("%s", adv.Message())
	}
	if sum.OverflowSlots > 0 {
		p.log.Warnf("buffer stays above storage capacity in %d slots", sum.OverflowSlots)
	}

	ev := metrics.PlanEvent{
		RunID:        plan.RunID,
		FleetSize:    res.Config.FleetSize,
		Suggested:    adv.Suggested,
		Pickups:      sum.Pickups,
		OverCapacity: sum.OverCapacity,
		PeakBuffer:   sum.PeakBuffer,
		FinalBuffer:  sum.FinalBuffer,
		Utilisation:  sum.Utilisation,
		Entries:      res.Schedule.Entries(),
		Time:         start,
		ComputeTime:  p.now().Sub(start),
	}
	if err := p.sink.RecordPlan(ev); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
	if p.bus != nil {
		p.bus.Publish(plan)
	}
	return plan, nil
}

func (p *Planner) reject(err error) {
	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		return
	}
	p.log.Warnf("configuration rejected: %v", err)
	if r, ok := p.sink.(metrics.RejectedRecorder); ok {
		if rerr := r.RecordRejected(ce.Field); rerr != nil {
			p.log.Errorf("metrics error: %v", rerr)
		}
	}
}
