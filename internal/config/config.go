// Package config loads the shell's YAML run configuration. The core
// session never reads files or environment; everything here flows into
// session.Options at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/croplab/veggiechain/internal/entropy"
	"github.com/croplab/veggiechain/internal/session"
	"github.com/croplab/veggiechain/internal/sim"
)

// Config describes one run: parameter overrides plus the variant
// toggles. The zero value is the baseline game.
type Config struct {
	// Parameters overrides defaults by name, e.g. truck_capacity: 150.
	Parameters map[string]float64 `yaml:"parameters"`

	// Weather enables the per-turn weather draw.
	Weather bool `yaml:"weather"`

	// RandomDemand hands demand to the simulation from turn 5 onward.
	RandomDemand bool `yaml:"random_demand"`

	// Seed fixes the random draws for reproducible runs. Nil means
	// seed from OS entropy.
	Seed *int64 `yaml:"seed"`
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SessionOptions converts the file contents into session options.
func (c Config) SessionOptions() session.Options {
	opts := session.Options{
		Parameters:     c.Parameters,
		WeatherEnabled: c.Weather,
	}
	if c.RandomDemand {
		opts.Demand = sim.DefaultRandomizedDemand()
	}
	if c.Seed != nil {
		opts.Rand = entropy.Seeded(*c.Seed)
	}
	return opts
}
