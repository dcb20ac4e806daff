// Package config carries the two configuration surfaces of the daemon:
// engine settings layered from defaults, an optional YAML file and
// GESTURED_* environment variables, and gesture rule files in TOML
// merged across the system search path.
package config

import "time"

// Settings contains process-wide engine configuration.
type Settings struct {
	// LogLevel controls verbosity: debug, info, warn or error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// MaxTapDistance is the travel threshold in device units that
	// separates taps from swipes. Must be strictly positive.
	MaxTapDistance float64 `koanf:"max_tap_distance"`

	// DirectionBias weights horizontal against vertical travel when a
	// swipe's direction is read. Must be strictly positive.
	DirectionBias float64 `koanf:"direction_bias"`

	// DebounceMS is the minimum gap between emitted gestures in
	// milliseconds. Zero disables debouncing.
	DebounceMS int `koanf:"debounce_ms"`

	// ResetTimeoutMS abandons an in-progress gesture when the device
	// stays silent for this long. Zero disables the timeout.
	ResetTimeoutMS int `koanf:"reset_timeout_ms"`

	// DefaultMaxSlots is the contact capacity assumed for devices that
	// do not report a slot range.
	DefaultMaxSlots int `koanf:"default_max_slots"`

	// DispatchQueueSize bounds pending action launches per device.
	DispatchQueueSize int `koanf:"dispatch_queue_size"`

	// HistorySize bounds the in-memory record of recent gestures.
	// Zero disables retention.
	HistorySize int `koanf:"history_size"`

	// MonitorAddr is the observability listen address, for example
	// "127.0.0.1:9680". Empty disables the monitor server.
	MonitorAddr string `koanf:"monitor_addr"`

	// Grab requests exclusive access to configured devices so gestures
	// are not also delivered to other listeners.
	Grab bool `koanf:"grab"`
}

// New returns Settings populated with default values.
func New() *Settings {
	return &Settings{
		LogLevel:          "info",
		LogFormat:         "text",
		MaxTapDistance:    100,
		DirectionBias:     1.0,
		DebounceMS:        100,
		ResetTimeoutMS:    0,
		DefaultMaxSlots:   5,
		DispatchQueueSize: 32,
		HistorySize:       64,
		MonitorAddr:       "",
		Grab:              false,
	}
}

// Debounce returns the debounce window as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// ResetTimeout returns the silence window as a duration.
func (s *Settings) ResetTimeout() time.Duration {
	return time.Duration(s.ResetTimeoutMS) * time.Millisecond
}
