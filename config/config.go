package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/milkrun/core/metrics"
	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/infra/mqtt"
)

// Config is the full application configuration.
type Config struct {
	Simulation model.SimulationConfig `json:"simulation"`
	Metrics    metrics.Config         `json:"metrics"`
	MQTT       mqtt.Config            `json:"mqtt"`
	Export     ExportConfig           `json:"export"`
	Sweep      SweepConfig            `json:"sweep"`
}

// Default returns the configuration used when no file overrides a field.
// Vehicle names are left empty and synthesised by SetDefaults.
func Default() Config {
	sim := model.DefaultConfig()
	sim.VehicleNames = nil
	return Config{Simulation: sim}
}

// Load reads a YAML or JSON file, applies K_ prefixed environment
// overrides (K_SIMULATION__FLEET_SIZE=4) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

// SetDefaults fills unset optional sections and keeps vehicle names in line
// with the fleet size.
func (c *Config) SetDefaults() {
	c.Simulation = c.Simulation.Normalize()
	c.Export.SetDefaults()
	c.Sweep.SetDefaults()
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section. Simulation errors wrap
// model.ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	return nil
}
