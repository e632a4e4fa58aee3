package simulator

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/milkrun/core/model"
)

func referenceConfig() model.SimulationConfig {
	return model.SimulationConfig{
		DailyProduction:   26000,
		InitialStorage:    0,
		TripDurationHours: 40,
		WeeklyWorkHours:   168,
		FleetSize:         3,
	}
}

func TestSimulateReferenceWeek(t *testing.T) {
	s, err := Simulate(referenceConfig())
	require.NoError(t, err)

	_, ok := s.Get(0, 0)
	assert.False(t, ok, "03:00 holds 8667 kg, not a full load")

	first, ok := s.Get(0, 1)
	require.True(t, ok)
	assert.Equal(t, 0, first.VehicleIndex)
	assert.Equal(t, "Vehicle 1", first.VehicleName)
	assert.Equal(t, model.ReasonOverCapacity, first.Reason)
	// 2 * 26000/3 - 14500 = 2833.33, rounded up.
	assert.Equal(t, 2834, first.QuantityRemaining)

	second, ok := s.Get(1, 0)
	require.True(t, ok)
	assert.Equal(t, "Vehicle 2", second.VehicleName, "vehicle 1 is on the road until hour 47")
	assert.Equal(t, 5667, second.QuantityRemaining)

	third, ok := s.Get(2, 0)
	require.True(t, ok)
	assert.Equal(t, "Vehicle 1", third.VehicleName, "vehicle 1 is back at hour 51")

	assert.Equal(t, 15, s.Len())
}

func TestSimulateEmptyFleet(t *testing.T) {
	cfg := referenceConfig()
	cfg.FleetSize = 0
	cfg.DailyProduction = 1e6
	s, err := Simulate(cfg)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestSimulateInitialStorageOnly(t *testing.T) {
	cfg := referenceConfig()
	cfg.DailyProduction = 0
	cfg.InitialStorage = 20000
	s, err := Simulate(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	e, ok := s.Get(0, 0)
	require.True(t, ok)
	assert.Equal(t, model.ReasonOverCapacity, e.Reason)
	assert.Equal(t, 5500, e.QuantityRemaining)
}

func TestTransportThresholdIsInclusive(t *testing.T) {
	cfg := model.SimulationConfig{DailyProduction: 3 * model.TransportCapacity, TripDurationHours: 1, WeeklyWorkHours: 168, FleetSize: 1}
	res, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Schedule.Len())
	e, _ := res.Schedule.Get(0, 0)
	assert.Equal(t, model.ReasonVehicleAvailable, e.Reason)
	assert.Equal(t, 0, e.QuantityRemaining)
}

func TestStorageThresholdIsExclusive(t *testing.T) {
	cfg := model.SimulationConfig{DailyProduction: 3 * model.StorageCapacity, TripDurationHours: 1, WeeklyWorkHours: 168, FleetSize: 2}
	s, err := Simulate(cfg)
	require.NoError(t, err)
	e, ok := s.Get(0, 0)
	require.True(t, ok)
	assert.Equal(t, model.ReasonVehicleAvailable, e.Reason, "16000 kg is not over capacity")
	assert.Equal(t, 1500, e.QuantityRemaining)
	e, _ = s.Get(0, 1)
	assert.Equal(t, model.ReasonOverCapacity, e.Reason)
}

func TestSimulateRejectsInvalidConfig(t *testing.T) {
	cfg := referenceConfig()
	cfg.WeeklyWorkHours = 0
	_, err := Simulate(cfg)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))

	cfg = referenceConfig()
	cfg.TripDurationHours = -1
	_, err = Run(cfg)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))

	cfg = referenceConfig()
	cfg.DailyProduction = 1e30
	_, err = Simulate(cfg)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))
}

func TestRemainingStaysPositiveAtQuantityBound(t *testing.T) {
	cfg := referenceConfig()
	cfg.DailyProduction = model.MaxQuantity
	cfg.InitialStorage = model.MaxQuantity
	cfg = cfg.WithFleetSize(1)
	s, err := Simulate(cfg)
	require.NoError(t, err)
	require.NotZero(t, s.Len())
	for _, e := range s.Entries() {
		assert.Positive(t, e.QuantityRemaining, "slot %s", e.Slot)
	}
}

func TestSimulateIsIdempotent(t *testing.T) {
	cfg := referenceConfig()
	cfg.VehicleNames = []string{"North", "South"}
	a, err := Simulate(cfg)
	require.NoError(t, err)
	b, err := Simulate(cfg)
	require.NoError(t, err)
	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
	assert.Equal(t, []string{"North", "South"}, cfg.VehicleNames, "caller config untouched")
}

func TestScheduleProperties(t *testing.T) {
	configs := []model.SimulationConfig{
		referenceConfig(),
		{DailyProduction: 50000, InitialStorage: 30000, TripDurationHours: 10, WeeklyWorkHours: 100, FleetSize: 2},
		{DailyProduction: 12000, InitialStorage: 500, TripDurationHours: 72, WeeklyWorkHours: 60, FleetSize: 5},
		{DailyProduction: 90000, TripDurationHours: 3.5, WeeklyWorkHours: 168, FleetSize: 7},
	}
	for _, cfg := range configs {
		res, err := Run(cfg)
		require.NoError(t, err)
		perSlot := cfg.DailyProduction / model.SlotsPerDay

		require.Len(t, res.Trace, 30)
		prev := cfg.InitialStorage
		lastStart := map[int]int{}
		for _, st := range res.Trace {
			assert.InDelta(t, prev+perSlot, st.BufferBefore, 1e-6)
			e, picked := res.Schedule[st.Slot]
			assert.Equal(t, picked, st.Picked)
			if picked {
				assert.InDelta(t, st.BufferBefore-model.TransportCapacity, st.BufferAfter, 1e-6)
				assert.Equal(t, st.BufferBefore > model.StorageCapacity, e.Reason == model.ReasonOverCapacity)
				assert.Equal(t, int(math.Ceil(st.BufferBefore-model.TransportCapacity)), e.QuantityRemaining)
				if start, ok := lastStart[e.VehicleIndex]; ok {
					assert.GreaterOrEqual(t, float64(st.Slot.Hour()-start), cfg.TripDurationHours, "overlapping trips for vehicle %d", e.VehicleIndex)
				}
				lastStart[e.VehicleIndex] = st.Slot.Hour()
			} else {
				assert.Equal(t, st.BufferBefore, st.BufferAfter)
			}
			prev = st.BufferAfter
		}
	}
}

func TestGreedyPrefersLowestIndex(t *testing.T) {
	cfg := model.SimulationConfig{DailyProduction: 3 * model.TransportCapacity, TripDurationHours: 1, WeeklyWorkHours: 168, FleetSize: 4}
	s, err := Simulate(cfg)
	require.NoError(t, err)
	for _, e := range s.Entries() {
		assert.Equal(t, 0, e.VehicleIndex, "vehicle 1 is always back before the next slot")
	}
}

func TestRunVehiclesFinalState(t *testing.T) {
	res, err := Run(referenceConfig())
	require.NoError(t, err)
	require.Len(t, res.Vehicles, 3)
	for _, v := range res.Vehicles {
		assert.Greater(t, v.AvailableAtHour, 0.0)
	}
	assert.Equal(t, []string{"Vehicle 1", "Vehicle 2", "Vehicle 3"}, res.Config.VehicleNames)
}
