package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/milkrun/core/metrics"
)

// PromSink exposes planning runs as Prometheus metrics.
type PromSink struct {
	plans       prometheus.Counter
	pickups     *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	peakBuffer  prometheus.Gauge
	finalBuffer prometheus.Gauge
	suggested   prometheus.Gauge
	fleet       prometheus.Gauge
	utilisation prometheus.Gauge
	compute     prometheus.Histogram
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "milkrun_plans_total",
			Help: "Number of computed plans",
		}),
		pickups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "milkrun_pickups_total",
			Help: "Scheduled pickups by vehicle and reason",
		}, []string{"vehicle", "reason"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "milkrun_rejected_configs_total",
			Help: "Configurations rejected before planning, by field",
		}, []string{"field"}),
		peakBuffer: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "milkrun_peak_buffer_kg",
			Help: "Highest buffer level of the latest plan",
		}),
		finalBuffer: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "milkrun_final_buffer_kg",
			Help: "Buffer level at the end of the latest plan",
		}),
		suggested: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "milkrun_suggested_fleet_size",
			Help: "Fleet size recommended for the latest configuration",
		}),
		fleet: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "milkrun_fleet_size",
			Help: "Configured fleet size of the latest plan",
		}),
		utilisation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "milkrun_fleet_utilisation_ratio",
			Help: "Share of fleet hours spent on trips in the latest plan",
		}),
		compute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "milkrun_plan_compute_seconds",
			Help:    "Time spent computing a plan",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}

	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.pickups, err = register(reg, s.pickups); err != nil {
		return nil, err
	}
	if s.rejected, err = register(reg, s.rejected); err != nil {
		return nil, err
	}
	if s.peakBuffer, err = register(reg, s.peakBuffer); err != nil {
		return nil, err
	}
	if s.finalBuffer, err = register(reg, s.finalBuffer); err != nil {
		return nil, err
	}
	if s.suggested, err = register(reg, s.suggested); err != nil {
		return nil, err
	}
	if s.fleet, err = register(reg, s.fleet); err != nil {
		return nil, err
	}
	if s.utilisation, err = register(reg, s.utilisation); err != nil {
		return nil, err
	}
	if s.compute, err = register(reg, s.compute); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan updates counters and gauges from the plan.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.Inc()
	for _, e := range ev.Entries {
		s.pickups.WithLabelValues(e.VehicleName, e.Reason.String()).Inc()
	}
	s.peakBuffer.Set(ev.PeakBuffer)
	s.finalBuffer.Set(ev.FinalBuffer)
	s.suggested.Set(float64(ev.Suggested))
	s.fleet.Set(float64(ev.FleetSize))
	s.utilisation.Set(ev.Utilisation)
	s.compute.Observe(ev.ComputeTime.Seconds())
	return nil
}

// RecordRejected counts a configuration rejected on field.
func (s *PromSink) RecordRejected(field string) error {
	s.rejected.WithLabelValues(field).Inc()
	return nil
}
