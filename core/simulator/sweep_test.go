package simulator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/milkrun/core/model"
)

func TestSweepMatchesSequentialRuns(t *testing.T) {
	cfg := referenceConfig()
	sizes := FleetRange(6)
	results, err := Sweep(context.Background(), cfg, sizes, 3)
	require.NoError(t, err)
	require.Len(t, results, len(sizes))
	for i, r := range results {
		assert.Equal(t, sizes[i], r.FleetSize)
		want, err := Simulate(cfg.WithFleetSize(sizes[i]))
		require.NoError(t, err)
		assert.Equal(t, want, r.Schedule)
	}
	assert.Zero(t, results[0].Summary.Pickups)
	assert.Equal(t, 15, results[3].Summary.Pickups)
	assert.Equal(t, 17, results[4].Summary.Pickups)
}

func TestSweepErrors(t *testing.T) {
	cfg := referenceConfig()
	_, err := Sweep(context.Background(), cfg, []int{1, -2}, 0)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))

	cfg.TripDurationHours = 0
	_, err = Sweep(context.Background(), cfg, []int{1}, 0)
	assert.True(t, errors.Is(err, model.ErrInvalidConfiguration))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sweep(ctx, referenceConfig(), []int{1, 2}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSmallestOverflowFree(t *testing.T) {
	results := []SweepResult{
		{FleetSize: 1, Summary: Summary{OverflowSlots: 4}},
		{FleetSize: 3, Summary: Summary{}},
		{FleetSize: 2, Summary: Summary{}},
	}
	n, ok := SmallestOverflowFree(results)
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = SmallestOverflowFree(results[:1])
	assert.False(t, ok)
	assert.Nil(t, FleetRange(-1))
	assert.Equal(t, []int{0, 1, 2}, FleetRange(2))
}
