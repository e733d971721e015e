package cliconfig

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/picoparser/pkg/csi"
)

// Config holds CLI configuration for picoparser.
type Config struct {
	Workers     int
	Interpolate bool

	Timestamp bool
	CSI       bool
	Magnitude bool
	Phase     bool

	LogLevel string
	Watch    bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		Timestamp: true,
		CSI:       true,
		Magnitude: true,
		Phase:     true,
		LogLevel:  "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if !c.Fields().Any() {
		return fmt.Errorf("at least one of timestamp, csi, magnitude, phase must be enabled")
	}
	return nil
}

// Fields returns the record fields selected by the configuration.
func (c *Config) Fields() csi.Fields {
	return csi.Fields{
		Timestamp: c.Timestamp,
		CSI:       c.CSI,
		Magnitude: c.Magnitude,
		Phase:     c.Phase,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
