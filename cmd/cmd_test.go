package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestPlanCSV(t *testing.T) {
	out := execute(t, "plan", "--format", "csv", "--fleet", "4")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 18)
	assert.Equal(t, "day,time,vehicle,reason,remaining_kg", lines[0])
	assert.Equal(t, "1,07:00,Vehicle 1,OVER_CAPACITY,2834", lines[1])
}

func TestSuggest(t *testing.T) {
	out := execute(t, "suggest", "--fleet", "2")
	assert.Contains(t, out, "suggested fleet size: 4")
	assert.Contains(t, out, "fleet too small: at least 4 vehicles needed, 2 configured")
}

func TestSweep(t *testing.T) {
	out := execute(t, "sweep", "--max", "6", "--workers", "2")
	assert.Contains(t, out, "smallest overflow-free fleet: 4")
	assert.True(t, strings.HasPrefix(out, "fleet"))
}

func TestWatchRequiresConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"watch"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.Error(t, rootCmd.Execute())
}

func TestSweepRejectsNegativeMax(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"sweep", "--max", "-1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_fleet -1")
	assert.NotContains(t, buf.String(), "no fleet up to")
}
