// Package mqtt publishes computed plans to an MQTT broker so depot displays
// and vehicle terminals can follow the latest schedule.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/core/simulator"
	"github.com/kilianp07/milkrun/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PlanMessage is the payload published on the plan topic.
type PlanMessage struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	FleetSize   int                   `json:"fleet_size"`
	Suggested   int                   `json:"suggested_fleet_size"`
	Sufficient  bool                  `json:"sufficient"`
	Summary     simulator.Summary     `json:"summary"`
	Entries     []model.ScheduleEntry `json:"entries"`
}

// VehicleMessage lists the pickups of a single vehicle.
type VehicleMessage struct {
	RunID   string                `json:"run_id"`
	Vehicle string                `json:"vehicle"`
	Entries []model.ScheduleEntry `json:"entries"`
}

// Publisher sends plans to the broker.
type Publisher struct {
	cli        pahoClient
	cfg        Config
	backoff    time.Duration
	logger     logger.Logger
	publishTTL time.Duration
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		cfg:        cfg,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
		publishTTL: 5 * time.Second,
	}, nil
}

// PublishPlan publishes the plan summary and, when per_vehicle is set, one
// message per vehicle on <topic>/vehicle/<name>.
func (p *Publisher) PublishPlan(ctx context.Context, plan simulator.Plan) error {
	entries := plan.Schedule.Entries()
	msg := PlanMessage{
		RunID:       plan.RunID,
		GeneratedAt: plan.GeneratedAt,
		FleetSize:   plan.Config.FleetSize,
		Suggested:   plan.Advice.Suggested,
		Sufficient:  plan.Advice.Sufficient,
		Summary:     plan.Summary,
		Entries:     entries,
	}
	if err := p.publishJSON(ctx, p.cfg.Topic, msg); err != nil {
		return err
	}
	if !p.cfg.PerVehicle {
		return nil
	}
	byVehicle := make(map[string][]model.ScheduleEntry, len(plan.Config.VehicleNames))
	for _, e := range entries {
		byVehicle[e.VehicleName] = append(byVehicle[e.VehicleName], e)
	}
	for _, name := range plan.Config.VehicleNames {
		vm := VehicleMessage{RunID: plan.RunID, Vehicle: name, Entries: byVehicle[name]}
		if vm.Entries == nil {
			vm.Entries = []model.ScheduleEntry{}
		}
		if err := p.publishJSON(ctx, VehicleTopic(p.cfg.Topic, name), vm); err != nil {
			return err
		}
	}
	return nil
}

// VehicleTopic returns the per-vehicle topic. MQTT wildcards and separators
// in the name are replaced.
func VehicleTopic(base, vehicle string) string {
	safe := strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(vehicle)
	return base + "/vehicle/" + safe
}

func (p *Publisher) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		if !token.WaitTimeout(p.publishTTL) {
			publishErr = fmt.Errorf("publish to %s timed out", topic)
		} else {
			publishErr = token.Error()
		}
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return publishErr
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
