// Package infra holds the adapters around the planner: the zerolog
// logger, Prometheus and InfluxDB sinks, and the MQTT plan publisher.
// They depend only on interfaces and types from the core packages.
package infra
