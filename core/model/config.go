package model

import (
	"fmt"
	"math"
)

// MaxQuantity bounds DailyProduction and InitialStorage in kg. With both at
// the bound the buffer stays below math.MaxInt32 over the whole horizon, so
// remaining quantities always fit an int32.
const MaxQuantity = 1e8

// SimulationConfig holds every input of a planning run. A run is fully
// determined by this value.
type SimulationConfig struct {
	DailyProduction   float64  `json:"daily_production" yaml:"daily_production"`
	InitialStorage    float64  `json:"initial_storage" yaml:"initial_storage"`
	TripDurationHours float64  `json:"trip_duration_hours" yaml:"trip_duration_hours"`
	WeeklyWorkHours   float64  `json:"weekly_work_hours" yaml:"weekly_work_hours"`
	FleetSize         int      `json:"fleet_size" yaml:"fleet_size"`
	VehicleNames      []string `json:"vehicle_names,omitempty" yaml:"vehicle_names,omitempty"`
}

// DefaultConfig returns the planner's out of the box settings.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		DailyProduction:   26000,
		InitialStorage:    0,
		TripDurationHours: 40,
		WeeklyWorkHours:   168,
		FleetSize:         3,
	}.Normalize()
}

// Validate rejects configurations the simulator cannot run.
func (c SimulationConfig) Validate() error {
	if err := finite("daily_production", c.DailyProduction); err != nil {
		return err
	}
	if c.DailyProduction < 0 {
		return invalid("daily_production", c.DailyProduction, "must not be negative")
	}
	if c.DailyProduction > MaxQuantity {
		return invalid("daily_production", c.DailyProduction, tooLarge)
	}
	if err := finite("initial_storage", c.InitialStorage); err != nil {
		return err
	}
	if c.InitialStorage < 0 {
		return invalid("initial_storage", c.InitialStorage, "must not be negative")
	}
	if c.InitialStorage > MaxQuantity {
		return invalid("initial_storage", c.InitialStorage, tooLarge)
	}
	if err := finite("trip_duration_hours", c.TripDurationHours); err != nil {
		return err
	}
	if c.TripDurationHours <= 0 {
		return invalid("trip_duration_hours", c.TripDurationHours, "must be positive")
	}
	if err := finite("weekly_work_hours", c.WeeklyWorkHours); err != nil {
		return err
	}
	if c.WeeklyWorkHours <= 0 {
		return invalid("weekly_work_hours", c.WeeklyWorkHours, "must be positive")
	}
	if c.FleetSize < 0 {
		return invalid("fleet_size", c.FleetSize, "must not be negative")
	}
	return nil
}

var tooLarge = fmt.Sprintf("must not exceed %.0f kg", MaxQuantity)

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, v, "must be a finite number")
	}
	return nil
}

// WithFleetSize returns a copy sized for n vehicles. Existing names are kept
// by position; new or blank positions get a default name. A negative n is
// kept as is so that Validate still rejects it.
func (c SimulationConfig) WithFleetSize(n int) SimulationConfig {
	c.FleetSize = n
	if n < 0 {
		c.VehicleNames = nil
		return c
	}
	names := make([]string, n)
	for i := range names {
		if i < len(c.VehicleNames) && c.VehicleNames[i] != "" {
			names[i] = c.VehicleNames[i]
		} else {
			names[i] = DefaultVehicleName(i)
		}
	}
	c.VehicleNames = names
	return c
}

// Normalize makes len(VehicleNames) equal FleetSize.
func (c SimulationConfig) Normalize() SimulationConfig {
	return c.WithFleetSize(c.FleetSize)
}

// Vehicles allocates the per-run vehicle table, all available at hour 0.
func (c SimulationConfig) Vehicles() []Vehicle {
	n := c.Normalize()
	if n.FleetSize <= 0 {
		return nil
	}
	vs := make([]Vehicle, n.FleetSize)
	for i := range vs {
		vs[i] = Vehicle{Index: i, Name: n.VehicleNames[i]}
	}
	return vs
}
