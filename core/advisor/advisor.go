// Package advisor estimates how many vehicles a weekly production volume
// requires. The estimate is informational and never constrains the
// simulator.
package advisor

import (
	"fmt"
	"math"

	"github.com/kilianp07/milkrun/core/model"
)

// Advice summarises the fleet estimate for a configuration.
type Advice struct {
	WeeklyQuantity float64 `json:"weekly_quantity"`
	TripsNeeded    int     `json:"trips_needed"`
	Suggested      int     `json:"suggested"`
	Configured     int     `json:"configured"`
	Sufficient     bool    `json:"sufficient"`
}

// SuggestFleetSize returns the minimum number of vehicles needed to carry a
// week of production. Both divisions round up: no partial trip and no
// partial vehicle.
func SuggestFleetSize(dailyProduction, tripDurationHours, weeklyWorkHours float64) (int, error) {
	_, fleet, err := estimate(dailyProduction, tripDurationHours, weeklyWorkHours)
	return fleet, err
}

// estimate returns the weekly trip count and the fleet size covering it.
// Results that would not fit an int32 are rejected.
func estimate(dailyProduction, tripDurationHours, weeklyWorkHours float64) (trips, fleet int, err error) {
	switch {
	case dailyProduction < 0 || math.IsNaN(dailyProduction) || math.IsInf(dailyProduction, 0):
		return 0, 0, &model.ConfigError{Field: "daily_production", Value: dailyProduction, Reason: "must not be negative"}
	case dailyProduction > model.MaxQuantity:
		return 0, 0, &model.ConfigError{Field: "daily_production", Value: dailyProduction, Reason: fmt.Sprintf("must not exceed %.0f kg", model.MaxQuantity)}
	case weeklyWorkHours <= 0 || math.IsNaN(weeklyWorkHours) || math.IsInf(weeklyWorkHours, 0):
		return 0, 0, &model.ConfigError{Field: "weekly_work_hours", Value: weeklyWorkHours, Reason: "must be positive"}
	case tripDurationHours <= 0 || math.IsNaN(tripDurationHours) || math.IsInf(tripDurationHours, 0):
		return 0, 0, &model.ConfigError{Field: "trip_duration_hours", Value: tripDurationHours, Reason: "must be positive"}
	}
	t := math.Ceil(dailyProduction * model.DaysPerWeek / model.TransportCapacity)
	f := math.Ceil(t * tripDurationHours / weeklyWorkHours)
	if f > math.MaxInt32 {
		return 0, 0, &model.ConfigError{Field: "trip_duration_hours", Value: tripDurationHours, Reason: "too long for the weekly work hours"}
	}
	return int(t), int(f), nil
}

// Assess compares the suggested fleet size with the configured one.
func Assess(cfg model.SimulationConfig) (Advice, error) {
	trips, suggested, err := estimate(cfg.DailyProduction, cfg.TripDurationHours, cfg.WeeklyWorkHours)
	if err != nil {
		return Advice{}, err
	}
	return Advice{
		WeeklyQuantity: cfg.DailyProduction * model.DaysPerWeek,
		TripsNeeded:    trips,
		Suggested:      suggested,
		Configured:     cfg.FleetSize,
		Sufficient:     cfg.FleetSize >= suggested,
	}, nil
}

// Message renders the advice for an operator.
func (a Advice) Message() string {
	if a.Suggested == 0 {
		return "no vehicles needed"
	}
	if a.Sufficient {
		return fmt.Sprintf("fleet is sufficient: %d or more vehicles recommended", a.Suggested)
	}
	return fmt.Sprintf("fleet too small: at least %d vehicles needed, %d configured", a.Suggested, a.Configured)
}
