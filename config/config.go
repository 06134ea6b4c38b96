// Package config holds the tunable constants that drive the analysis
// engine: sliding-window durations, the conflict-overlap threshold, the
// per-violation example cap, and the standard lighting-protocol ports.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the analysis engine reads. Zero value is
// never used directly by callers; Default returns a populated Config.
type Config struct {
	// JitterWindow bounds the per-source/per-flow IAT jitter ring buffer.
	JitterWindow Duration `toml:"jitter_window"`

	// RateWindow bounds the pps/bps peak-rate ring buffer for flows.
	RateWindow Duration `toml:"rate_window"`

	// FPSWindow bounds the trailing window used to measure DMX frame rate.
	FPSWindow Duration `toml:"fps_window"`

	// ConflictOverlap is the timespan overlap between two sources on the
	// same universe that must be exceeded before it is reported as a
	// conflict.
	ConflictOverlap Duration `toml:"conflict_overlap"`

	// ComplianceExampleCap bounds how many example messages are retained
	// per distinct violation ID.
	ComplianceExampleCap int `toml:"compliance_example_cap"`

	// ArtNetPort and SACNPort are the standard UDP ports of the two
	// protocols. Every UDP payload is offered to both decoders regardless
	// of port; a frame decoded with neither its source nor destination on
	// the standard port raises a port warning.
	ArtNetPort int `toml:"artnet_port"`
	SACNPort   int `toml:"sacn_port"`
}

// Duration wraps time.Duration so it can be read from TOML as either a
// bare number of nanoseconds or a Go duration string ("10s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
		return nil
	case int64:
		d.Duration = time.Duration(v)
		return nil
	case float64:
		d.Duration = time.Duration(int64(v))
		return nil
	default:
		return fmt.Errorf("unsupported duration type: %T", data)
	}
}

// Default returns the configuration spec.md pins: 10s jitter/loss/burst
// windows, a 1s rate window, a 5s fps window, a 1s conflict-overlap
// threshold, and a 3-example compliance cap.
func Default() *Config {
	return &Config{
		JitterWindow:         Duration{10 * time.Second},
		RateWindow:           Duration{1 * time.Second},
		FPSWindow:            Duration{5 * time.Second},
		ConflictOverlap:      Duration{1 * time.Second},
		ComplianceExampleCap: 3,
		ArtNetPort:           6454,
		SACNPort:             5568,
	}
}

// Load starts from Default and overlays any fields present in the TOML
// file at path, the same "defaults then overlay" shape the teacher used
// for its mapping config.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JitterWindow.Duration <= 0 {
		return fmt.Errorf("jitter_window must be positive")
	}
	if c.RateWindow.Duration <= 0 {
		return fmt.Errorf("rate_window must be positive")
	}
	if c.FPSWindow.Duration <= 0 {
		return fmt.Errorf("fps_window must be positive")
	}
	if c.ConflictOverlap.Duration <= 0 {
		return fmt.Errorf("conflict_overlap must be positive")
	}
	if c.ComplianceExampleCap < 1 {
		return fmt.Errorf("compliance_example_cap must be at least 1")
	}
	if c.ArtNetPort <= 0 || c.ArtNetPort > 65535 {
		return fmt.Errorf("artnet_port out of range")
	}
	if c.SACNPort <= 0 || c.SACNPort > 65535 {
		return fmt.Errorf("sacn_port out of range")
	}
	return nil
}
