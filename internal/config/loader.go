package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PODIUM_TAU, PODIUM_PERIOD_MODE, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "podium_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.EventsFile == "" {
		return fmt.Errorf("%w: events_file must not be empty", ErrInvalidConfig)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("%w: output_file must not be empty", ErrInvalidConfig)
	}
	if c.Tau <= 0 {
		return fmt.Errorf("%w: tau must be positive", ErrInvalidConfig)
	}
	if c.MaxSolverIterations <= 0 {
		return fmt.Errorf("%w: max_solver_iterations must be positive", ErrInvalidConfig)
	}
	switch c.PeriodMode {
	case "event", "monthly":
	default:
		return fmt.Errorf("%w: period_mode must be event or monthly, got %q", ErrInvalidConfig, c.PeriodMode)
	}
	switch c.DivergencePolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("%w: divergence_policy must be abort or skip, got %q", ErrInvalidConfig, c.DivergencePolicy)
	}
	switch c.InvalidEventPolicy {
	case "abort", "skip":
	default:
		return fmt.Errorf("%w: invalid_event_policy must be abort or skip, got %q", ErrInvalidConfig, c.InvalidEventPolicy)
	}
	return nil
}
