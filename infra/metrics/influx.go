package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/milkrun/core/metrics"
	"github.com/kilianp07/milkrun/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes plan summaries and pickups to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write on the URL is accepted.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink if the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one plan_summary point and one plan_pickup point per
// scheduled pickup. Pickup timestamps are offset from the plan time by the
// slot hour.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.timeout)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Entries)+1)
	points = append(points, write.NewPointWithMeasurement("plan_summary").
		AddTag("run_id", ev.RunID).
		AddTag("fleet_size", strconv.Itoa(ev.FleetSize)).
		AddField("suggested", ev.Suggested).
		AddField("pickups", ev.Pickups).
		AddField("over_capacity", ev.OverCapacity).
		AddField("peak_buffer_kg", round3(ev.PeakBuffer)).
		AddField("final_buffer_kg", round3(ev.FinalBuffer)).
		AddField("utilisation", round3(ev.Utilisation)).
		SetTime(ev.Time))
	for _, e := range ev.Entries {
		points = append(points, write.NewPointWithMeasurement("plan_pickup").
			AddTag("run_id", ev.RunID).
			AddTag("vehicle", e.VehicleName).
			AddTag("reason", e.Reason.String()).
			AddField("day", e.Slot.Day).
			AddField("slot", e.Slot.Index).
			AddField("remaining_kg", e.QuantityRemaining).
			SetTime(ev.Time.Add(time.Duration(e.Slot.Hour())*time.Hour)))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
