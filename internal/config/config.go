// Package config holds training settings, loadable from a YAML file.
// Command line flags override whatever the file provides.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config collects the tunable training settings.
type Config struct {
	Epochs    int     `yaml:"epochs"`
	BatchSize int     `yaml:"batch_size"`
	LR        float64 `yaml:"lr"`
	SGD       bool    `yaml:"sgd"`
	Momentum  float64 `yaml:"momentum"`
	Normalize bool    `yaml:"normalize"`
	DataDir   string  `yaml:"data_dir"`
	OutDir    string  `yaml:"out_dir"`
	Seed      int64   `yaml:"seed"`
}

// Default returns the standard settings: Adam at 1e-3, batches of 128,
// ten epochs.
func Default() Config {
	return Config{
		Epochs:    10,
		BatchSize: 128,
		LR:        1e-3,
		Momentum:  0.9,
		DataDir:   "data",
		OutDir:    "out",
		Seed:      42,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so
// typos surface instead of silently using a default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that would break training.
func (c Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.LR <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", c.LR)
	}
	if c.Momentum < 0 || c.Momentum >= 1 {
		return fmt.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	}
	return nil
}
