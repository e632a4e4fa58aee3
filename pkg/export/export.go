// Package export writes plans as JSON, CSV or a plain text grid.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/core/simulator"
)

// Write dispatches to the writer for format (grid, csv or json).
func Write(w io.Writer, format string, plan simulator.Plan, withTrace bool) error {
	switch strings.ToLower(format) {
	case "grid", "":
		return WriteGrid(w, plan.Schedule)
	case "csv":
		return WriteCSV(w, plan.Schedule)
	case "json":
		return WriteJSON(w, plan, withTrace)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteJSON writes the plan as indented JSON. The slot trace is dropped
// unless withTrace is set.
func WriteJSON(w io.Writer, plan simulator.Plan, withTrace bool) error {
	if !withTrace {
		plan.Trace = nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes one row per pickup in timeline order.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "time", "vehicle", "reason", "remaining_kg"}); err != nil {
		return err
	}
	for _, e := range s.Entries() {
		rec := []string{
			strconv.Itoa(e.Slot.Day + 1),
			e.Slot.Label(),
			e.VehicleName,
			e.Reason.String(),
			strconv.Itoa(e.QuantityRemaining),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGrid renders the planning horizon as a day by time table. Empty
// slots show a dash.
func WriteGrid(w io.Writer, s model.Schedule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"Day / Time"}
	for i := 0; i < model.SlotsPerDay; i++ {
		header = append(header, model.TimeSlot{Index: i}.Label())
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}
	for d := 0; d < model.PlanningDays; d++ {
		row := []string{fmt.Sprintf("Day %d", d+1)}
		for i := 0; i < model.SlotsPerDay; i++ {
			row = append(row, cell(s, d, i))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func cell(s model.Schedule, day, index int) string {
	e, ok := s.Get(day, index)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s (%s, %d kg left)", e.VehicleName, e.Reason.Describe(), e.QuantityRemaining)
}
