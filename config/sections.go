package config

import "fmt"

// ExportConfig selects how plans are written.
type ExportConfig struct {
	// Format is one of grid, csv or json.
	Format string `json:"format"`
	// Path is the output file; empty means stdout.
	Path string `json:"path"`
	// Trace includes the per-slot buffer trace in JSON output.
	Trace bool `json:"trace"`
}

// SetDefaults applies sane defaults.
func (c *ExportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "grid"
	}
}

// Validate checks the export format.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case "grid", "csv", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
}

// SweepConfig bounds the fleet size sweep.
type SweepConfig struct {
	Workers  int `json:"workers"`
	MaxFleet int `json:"max_fleet"`
}

// SetDefaults applies sane defaults.
func (c *SweepConfig) SetDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxFleet <= 0 {
		c.MaxFleet = 10
	}
}

// Validate checks the sweep bounds.
func (c SweepConfig) Validate() error {
	if c.MaxFleet < 0 {
		return fmt.Errorf("max_fleet %d must not be negative", c.MaxFleet)
	}
	if c.MaxFleet > 1000 {
		return fmt.Errorf("max_fleet %d too large", c.MaxFleet)
	}
	return nil
}
