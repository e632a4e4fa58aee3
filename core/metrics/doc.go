// Package metrics defines how planning runs are reported to observability
// backends. A MetricsSink receives one PlanEvent per run. Sinks are built
// from configuration through a factory registry; several configured sinks
// are combined into a MultiSink.
package metrics
