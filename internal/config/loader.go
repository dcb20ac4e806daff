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

// EnvConfig names the environment variable that points at an optional
// YAML settings file.
const EnvConfig = "GESTURED_CONFIG"

const envPrefix = "GESTURED_"

// Load builds Settings by layering defaults, an optional file, and
// environment variables.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GESTURED_CONFIG is set
//  3. environment (prefix GESTURED_)
func Load(ctx context.Context) (*Settings, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadSettings, err)
		}
	}

	// Environment variables override the file. A key such as
	// GESTURED_MAX_TAP_DISTANCE maps to max_tap_distance.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gestured_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadSettings, err)
	}

	// Unmarshal over a copy of the defaults so absent keys keep them.
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadSettings, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects settings the engine cannot run with.
func (s *Settings) validate() error {
	switch {
	case s.MaxTapDistance <= 0:
		return fmt.Errorf("%w: max_tap_distance must be strictly positive", ErrInvalidSettings)
	case s.DirectionBias <= 0:
		return fmt.Errorf("%w: direction_bias must be strictly positive", ErrInvalidSettings)
	case s.DebounceMS < 0:
		return fmt.Errorf("%w: debounce_ms must not be negative", ErrInvalidSettings)
	case s.ResetTimeoutMS < 0:
		return fmt.Errorf("%w: reset_timeout_ms must not be negative", ErrInvalidSettings)
	case s.DefaultMaxSlots < 1:
		return fmt.Errorf("%w: default_max_slots must be at least one", ErrInvalidSettings)
	case s.DispatchQueueSize < 1:
		return fmt.Errorf("%w: dispatch_queue_size must be at least one", ErrInvalidSettings)
	case s.HistorySize < 0:
		return fmt.Errorf("%w: history_size must not be negative", ErrInvalidSettings)
	}

	return nil
}
