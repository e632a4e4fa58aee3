package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/milkrun/core/model"
)

// PlanEvent summarises one planning run.
type PlanEvent struct {
	RunID        string
	FleetSize    int
	Suggested    int
	Pickups      int
	OverCapacity int
	PeakBuffer   float64
	FinalBuffer  float64
	Utilisation  float64
	Entries      []model.ScheduleEntry
	Time         time.Time
	ComputeTime  time.Duration
}

// MetricsSink records planning runs.
type MetricsSink interface {
	RecordPlan(ev PlanEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error { return nil }

// RejectedRecorder is implemented by sinks that count rejected
// configurations.
type RejectedRecorder interface {
	RecordRejected(field string) error
}

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordRejected forwards to sinks that support it.
func (m *MultiSink) RecordRejected(field string) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(RejectedRecorder); ok {
			if err := r.RecordRejected(field); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
