package simulator

import (
	"math"

	"github.com/kilianp07/milkrun/core/model"
)

// SlotTrace records the buffer around one slot. BufferBefore is measured
// after production arrived and before any pickup.
type SlotTrace struct {
	Slot         model.TimeSlot `json:"slot"`
	BufferBefore float64        `json:"buffer_before"`
	BufferAfter  float64        `json:"buffer_after"`
	Picked       bool           `json:"picked"`
}

// Result is the full outcome of one run.
type Result struct {
	Config   model.SimulationConfig `json:"config"`
	Schedule model.Schedule         `json:"schedule"`
	Trace    []SlotTrace            `json:"trace"`
	Vehicles []model.Vehicle        `json:"vehicles"`
}

// Simulate returns the pickup schedule for cfg.
func Simulate(cfg model.SimulationConfig) (model.Schedule, error) {
	res, err := Run(cfg)
	if err != nil {
		return nil, err
	}
	return res.Schedule, nil
}

// Run validates cfg and performs the greedy pass over the timeline.
func Run(cfg model.SimulationConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.Normalize()

	vehicles := cfg.Vehicles()
	perSlot := cfg.DailyProduction / model.SlotsPerDay
	buffer := cfg.InitialStorage
	timeline := model.Timeline()
	schedule := make(model.Schedule)
	trace := make([]SlotTrace, 0, len(timeline))

	for _, slot := range timeline {
		buffer += perSlot
		hour := slot.Hour()
		st := SlotTrace{Slot: slot, BufferBefore: buffer}

		if i := firstAvailable(vehicles, hour, buffer); i >= 0 {
			v := &vehicles[i]
			schedule[slot] = model.ScheduleEntry{
				Slot:              slot,
				VehicleIndex:      v.Index,
				VehicleName:       v.Name,
				Reason:            model.ClassifyReason(buffer),
				QuantityRemaining: int(math.Ceil(buffer - model.TransportCapacity)),
			}
			buffer -= model.TransportCapacity
			v.AvailableAtHour = float64(hour) + cfg.TripDurationHours
			st.Picked = true
		}
		st.BufferAfter = buffer
		trace = append(trace, st)
	}

	return Result{Config: cfg, Schedule: schedule, Trace: trace, Vehicles: vehicles}, nil
}

// firstAvailable returns the index of the first vehicle free at hour, or -1
// when the buffer does not hold a full load or every vehicle is on a trip.
func firstAvailable(vehicles []model.Vehicle, hour int, buffer float64) int {
	if buffer < model.TransportCapacity {
		return -1
	}
	for i, v := range vehicles {
		if v.AvailableAt(hour) {
			return i
		}
	}
	return -1
}
