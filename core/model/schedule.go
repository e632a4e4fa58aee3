package model

import (
	"fmt"
	"sort"
)

// ReasonCode explains why a pickup was scheduled.
type ReasonCode int

const (
	// ReasonVehicleAvailable means the buffer reached the transport
	// threshold and a vehicle was free.
	ReasonVehicleAvailable ReasonCode = iota
	// ReasonOverCapacity means the buffer exceeded StorageCapacity when
	// the vehicle was assigned.
	ReasonOverCapacity
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonVehicleAvailable:
		return "VEHICLE_AVAILABLE"
	case ReasonOverCapacity:
		return "OVER_CAPACITY"
	default:
		return "UNKNOWN"
	}
}

// Describe returns a human readable label for the reason.
func (r ReasonCode) Describe() string {
	switch r {
	case ReasonOverCapacity:
		return "storage over capacity"
	case ReasonVehicleAvailable:
		return "vehicle available"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ReasonCode) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ReasonCode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "VEHICLE_AVAILABLE":
		*r = ReasonVehicleAvailable
	case "OVER_CAPACITY":
		*r = ReasonOverCapacity
	default:
		return fmt.Errorf("unknown reason code %q", string(b))
	}
	return nil
}

// ClassifyReason returns the reason for a pickup taken with the given
// buffer level (after production, before the pickup is removed).
func ClassifyReason(buffer float64) ReasonCode {
	if buffer > StorageCapacity {
		return ReasonOverCapacity
	}
	return ReasonVehicleAvailable
}

// ScheduleEntry records a pickup assigned to a slot.
type ScheduleEntry struct {
	Slot              TimeSlot   `json:"slot"`
	VehicleIndex      int        `json:"vehicle_index"`
	VehicleName       string     `json:"vehicle"`
	Reason            ReasonCode `json:"reason"`
	QuantityRemaining int        `json:"quantity_remaining_kg"`
}

// Schedule maps slots to their pickup. A missing key means no pickup.
type Schedule map[TimeSlot]ScheduleEntry

// Get returns the entry for (day, index) if a pickup was scheduled.
func (s Schedule) Get(day, index int) (ScheduleEntry, bool) {
	e, ok := s[TimeSlot{Day: day, Index: index}]
	return e, ok
}

// Len returns the number of pickups.
func (s Schedule) Len() int { return len(s) }

// Entries returns the pickups in timeline order.
func (s Schedule) Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Slot, out[j].Slot
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Index < b.Index
	})
	return out
}

// PickupsByVehicle counts pickups per vehicle name.
func (s Schedule) PickupsByVehicle() map[string]int {
	out := make(map[string]int)
	for _, e := range s {
		out[e.VehicleName]++
	}
	return out
}
