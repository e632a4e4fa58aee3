package simulator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/milkrun/core/model"
)

// Summary aggregates a run for reporting.
type Summary struct {
	Pickups          int            `json:"pickups"`
	OverCapacity     int            `json:"over_capacity"`
	OverflowSlots    int            `json:"overflow_slots"`
	PeakBuffer       float64        `json:"peak_buffer"`
	MeanBuffer       float64        `json:"mean_buffer"`
	BufferStdDev     float64        `json:"buffer_stddev"`
	FinalBuffer      float64        `json:"final_buffer"`
	Collected        float64        `json:"collected"`
	PickupsByVehicle map[string]int `json:"pickups_by_vehicle"`
	Utilisation      float64        `json:"utilisation"`
}

// Summarize computes buffer statistics and fleet utilisation. Trips that
// run past the end of the horizon only count the hours inside it.
func Summarize(res Result) Summary {
	s := Summary{
		Pickups:          res.Schedule.Len(),
		PickupsByVehicle: res.Schedule.PickupsByVehicle(),
		Collected:        float64(res.Schedule.Len()) * model.TransportCapacity,
	}
	for _, e := range res.Schedule {
		if e.Reason == model.ReasonOverCapacity {
			s.OverCapacity++
		}
	}

	if len(res.Trace) > 0 {
		levels := make([]float64, len(res.Trace))
		for i, t := range res.Trace {
			levels[i] = t.BufferBefore
			if t.BufferAfter > model.StorageCapacity {
				s.OverflowSlots++
			}
		}
		s.PeakBuffer = floats.Max(levels)
		s.MeanBuffer, s.BufferStdDev = stat.PopMeanStdDev(levels, nil)
		s.FinalBuffer = res.Trace[len(res.Trace)-1].BufferAfter
	}

	if n := len(res.Vehicles); n > 0 {
		horizon := float64(model.HorizonHours())
		busy := make([]float64, 0, res.Schedule.Len())
		for _, e := range res.Schedule {
			start := float64(e.Slot.Hour())
			busy = append(busy, math.Min(start+res.Config.TripDurationHours, horizon)-start)
		}
		s.Utilisation = floats.Sum(busy) / (float64(n) * horizon)
	}
	return s
}
