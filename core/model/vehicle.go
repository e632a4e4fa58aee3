package model

import "fmt"

// VehicleState is derived from a vehicle's availability hour at a given
// point on the timeline.
type VehicleState int

const (
	StateAvailable VehicleState = iota
	StateBusy
)

func (s VehicleState) String() string {
	switch s {
	case StateAvailable:
		return "AVAILABLE"
	case StateBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// Vehicle is one truck of the fleet. AvailableAtHour is the earliest
// absolute hour at which it can be assigned another pickup.
type Vehicle struct {
	Index           int     `json:"index"`
	Name            string  `json:"name"`
	AvailableAtHour float64 `json:"available_at_hour"`
}

// AvailableAt reports whether the vehicle can start a trip at hour.
func (v Vehicle) AvailableAt(hour int) bool {
	return float64(hour) >= v.AvailableAtHour
}

// State returns the vehicle state at hour.
func (v Vehicle) State(hour int) VehicleState {
	if v.AvailableAt(hour) {
		return StateAvailable
	}
	return StateBusy
}

// DefaultVehicleName returns the synthesised name for the vehicle at index.
func DefaultVehicleName(index int) string {
	return fmt.Sprintf("Vehicle %d", index+1)
}
