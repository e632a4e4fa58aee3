package model

import "fmt"

const (
	// TransportCapacity is the quantity in kg one vehicle carries per trip.
	TransportCapacity = 14500.0
	// StorageCapacity is the nominal buffer size in kg. It is only used to
	// classify pickups; the buffer itself is never clamped.
	StorageCapacity = 16000.0

	// PlanningDays is the length of the planning horizon.
	PlanningDays = 10
	// SlotsPerDay is the number of collection opportunities per day.
	SlotsPerDay = 3
	// DaysPerWeek is used to turn daily production into weekly demand.
	DaysPerWeek = 7
)

// SlotHours maps a slot index to its hour of day.
var SlotHours = [SlotsPerDay]int{3, 7, 14}

// TimeSlot identifies one collection opportunity on the timeline.
type TimeSlot struct {
	Day   int `json:"day" yaml:"day"`
	Index int `json:"index" yaml:"index"`
}

// Hour returns the absolute hour of the slot counted from day 0 midnight.
func (s TimeSlot) Hour() int {
	return s.Day*24 + SlotHours[s.Index]
}

// Label returns the time of day, e.g. "07:00".
func (s TimeSlot) Label() string {
	return fmt.Sprintf("%02d:00", SlotHours[s.Index])
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("day %d %s", s.Day+1, s.Label())
}

// MarshalText encodes the slot as "day-index", e.g. "0-1".
func (s TimeSlot) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d-%d", s.Day, s.Index)), nil
}

// UnmarshalText parses the "day-index" form produced by MarshalText.
func (s *TimeSlot) UnmarshalText(b []byte) error {
	var ts TimeSlot
	if _, err := fmt.Sscanf(string(b), "%d-%d", &ts.Day, &ts.Index); err != nil {
		return fmt.Errorf("parse slot %q: %w", string(b), err)
	}
	if !ts.Valid() {
		return fmt.Errorf("slot %q outside the planning horizon", string(b))
	}
	*s = ts
	return nil
}

// Valid reports whether the slot lies on the planning timeline.
func (s TimeSlot) Valid() bool {
	return s.Day >= 0 && s.Day < PlanningDays && s.Index >= 0 && s.Index < SlotsPerDay
}

// Timeline returns every slot of the horizon, day ascending then slot
// ascending.
func Timeline() []TimeSlot {
	slots := make([]TimeSlot, 0, PlanningDays*SlotsPerDay)
	for d := 0; d < PlanningDays; d++ {
		for i := 0; i < SlotsPerDay; i++ {
			slots = append(slots, TimeSlot{Day: d, Index: i})
		}
	}
	return slots
}

// HorizonHours is the span covered by the timeline.
func HorizonHours() int {
	return PlanningDays * 24
}
