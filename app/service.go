package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/milkrun/config"
	coremetrics "github.com/kilianp07/milkrun/core/metrics"
	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/core/simulator"
	"github.com/kilianp07/milkrun/infra/logger"
	"github.com/kilianp07/milkrun/infra/metrics"
	"github.com/kilianp07/milkrun/infra/mqtt"
	"github.com/kilianp07/milkrun/internal/eventbus"
	"github.com/kilianp07/milkrun/pkg/export"
)

// planPublisher is the subset of the MQTT publisher used by the service.
type planPublisher interface {
	PublishPlan(ctx context.Context, plan simulator.Plan) error
	Close()
}

// Service replans whenever the configuration changes and fans each plan
// out to the writer, the metrics sinks and the broker.
type Service struct {
	Planner   *simulator.Planner
	bus       *eventbus.Bus[simulator.Plan]
	sink      coremetrics.MetricsSink
	publisher planPublisher
	out       io.Writer
	log       logger.Logger
	promAddr  string

	mu        sync.Mutex
	exportCfg config.ExportConfig
}

// New creates a Service from the configuration. Metrics sinks and the MQTT
// publisher are built once; later reloads only affect the simulation and
// export sections.
func New(cfg *config.Config, out io.Writer) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New[simulator.Plan](8)
	planner, err := simulator.NewPlanner(logger.New("planner"), sink, bus)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		Planner:   planner,
		bus:       bus,
		sink:      sink,
		out:       out,
		log:       logg,
		promAddr:  cfg.Metrics.PrometheusAddr,
		exportCfg: cfg.Export,
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run watches path and replans on every change until ctx is canceled.
func (s *Service) Run(ctx context.Context, path string) error {
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr, prometheus.DefaultGatherer); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.publisher != nil {
		sub := s.bus.Subscribe()
		defer s.bus.Unsubscribe(sub)
		go s.forward(ctx, sub)
	}
	return config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
		if err != nil {
			s.log.Errorf("config reload: %v", err)
			s.recordRejected(err)
			return
		}
		if _, err := s.Handle(ctx, cfg); err != nil {
			s.log.Errorf("plan: %v", err)
		}
	})
}

// Handle computes a plan for cfg and writes it in the configured format.
func (s *Service) Handle(ctx context.Context, cfg *config.Config) (simulator.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportCfg = cfg.Export
	plan, err := s.Planner.Plan(ctx, cfg.Simulation)
	if err != nil {
		return simulator.Plan{}, err
	}
	if err := export.Write(s.out, s.exportCfg.Format, plan, s.exportCfg.Trace); err != nil {
		return plan, fmt.Errorf("export: %w", err)
	}
	return plan, nil
}

// recordRejected counts a reload refused for an invalid simulation field.
func (s *Service) recordRejected(err error) {
	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		return
	}
	r, ok := s.sink.(coremetrics.RejectedRecorder)
	if !ok {
		return
	}
	if rerr := r.RecordRejected(ce.Field); rerr != nil {
		s.log.Errorf("metrics error: %v", rerr)
	}
}

func (s *Service) forward(ctx context.Context, sub <-chan simulator.Plan) {
	for {
		select {
		case <-ctx.Done():
			return
		case plan, ok := <-sub:
			if !ok {
				return
			}
			if err := s.publisher.PublishPlan(ctx, plan); err != nil {
				s.log.Errorf("publish plan %s: %v", plan.RunID, err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
