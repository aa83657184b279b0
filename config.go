package main

import (
	"errors"
	"fmt"
	"os"

	"git.sr.ht/~whereswaldon/statechart/statechart"
	"gopkg.in/yaml.v3"
)

const (
	reducerNone  = "none"
	reducerMerge = "merge"
)

// Config holds the user-adjustable chart settings. It can be loaded from a
// YAML file and overridden by flags.
type Config struct {
	// GapFraction is the share of each band left empty between series.
	GapFraction float64 `yaml:"gap_fraction"`
	// Reducer selects how neighbouring rectangles are simplified: "none" or
	// "merge".
	Reducer string `yaml:"reducer"`
	// MinRectWidth is the narrowest rectangle, in pixels, that the merge
	// reducer keeps on its own.
	MinRectWidth float64 `yaml:"min_rect_width"`
	// NsPerDp is the initial zoom level.
	NsPerDp int64 `yaml:"ns_per_dp"`
}

func DefaultConfig() Config {
	return Config{
		GapFraction:  0.2,
		Reducer:      reducerMerge,
		MinRectWidth: 1,
		NsPerDp:      1_000_000,
	}
}

// LoadConfig reads the YAML file at path on top of the defaults. An empty
// path yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed parsing config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.GapFraction < 0 || c.GapFraction > 1 {
		errs = append(errs, fmt.Errorf("gap_fraction %v outside [0,1]", c.GapFraction))
	}
	if c.Reducer != reducerNone && c.Reducer != reducerMerge {
		errs = append(errs, fmt.Errorf("unknown reducer %q", c.Reducer))
	}
	if c.MinRectWidth < 0 {
		errs = append(errs, fmt.Errorf("min_rect_width %v is negative", c.MinRectWidth))
	}
	if c.NsPerDp < 1 {
		errs = append(errs, fmt.Errorf("ns_per_dp %d must be positive", c.NsPerDp))
	}
	return errors.Join(errs...)
}

// ChartReducer returns the reducer named by the configuration.
func (c Config) ChartReducer() statechart.Reducer[string] {
	if c.Reducer == reducerNone {
		return statechart.Identity[string]()
	}
	return statechart.MergeAdjacent[string](c.MinRectWidth)
}
