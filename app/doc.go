// Package app wires the planner to configuration reloads, metrics sinks and
// the MQTT publisher.
package app
