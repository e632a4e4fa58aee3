// Package scenarios replays YAML planning scenarios against the planner.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/milkrun/core/model"
)

// PickupDef is one expected schedule entry. Slot uses the day-index form
// ("0-1" is day 1 at 07:00).
type PickupDef struct {
	Slot      string `yaml:"slot"`
	Vehicle   string `yaml:"vehicle"`
	Reason    string `yaml:"reason"`
	Remaining int    `yaml:"remaining"`
}

// ToModel parses the slot and reason of the definition.
func (p PickupDef) ToModel() (model.TimeSlot, model.ReasonCode, error) {
	var slot model.TimeSlot
	if err := slot.UnmarshalText([]byte(p.Slot)); err != nil {
		return slot, 0, err
	}
	var reason model.ReasonCode
	if err := reason.UnmarshalText([]byte(p.Reason)); err != nil {
		return slot, 0, err
	}
	return slot, reason, nil
}

type Expected struct {
	Pickups      int         `yaml:"pickups"`
	OverCapacity *int        `yaml:"over_capacity,omitempty"`
	Suggested    *int        `yaml:"suggested,omitempty"`
	FinalBuffer  *float64    `yaml:"final_buffer,omitempty"`
	Entries      []PickupDef `yaml:"entries"`
	// Empty lists slots that must not hold a pickup.
	Empty []string `yaml:"empty,omitempty"`
}

type Scenario struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Config      model.SimulationConfig `yaml:"config"`
	Expected    Expected               `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Config = sc.Config.Normalize()
	return &sc, nil
}
