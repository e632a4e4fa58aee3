// Package simulator computes the collection schedule for the planning
// horizon. Run walks the thirty fixed slots once: production is added to the
// buffer, and the first free vehicle in index order collects a full load
// whenever the buffer holds one. The pass is greedy, deterministic and
// never looks ahead.
//
// Run and Simulate are pure and safe to call concurrently. Planner wraps
// them with logging, metrics and event publication; Sweep evaluates several
// fleet sizes in parallel.
package simulator
