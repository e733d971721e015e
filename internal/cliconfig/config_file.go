package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with optional booleans so that an absent key
// leaves the default alone.
type FileConfig struct {
	Workers     int    `toml:"workers"`
	Interpolate *bool  `toml:"interpolate"`
	Timestamp   *bool  `toml:"timestamp"`
	CSI         *bool  `toml:"csi"`
	Magnitude   *bool  `toml:"magnitude"`
	Phase       *bool  `toml:"phase"`
	LogLevel    string `toml:"log_level"`
	Watch       *bool  `toml:"watch"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.picoparser/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".picoparser", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setBool("interpolate", fc.Interpolate, &cfg.Interpolate)
	s.setBool("timestamp", fc.Timestamp, &cfg.Timestamp)
	s.setBool("csi", fc.CSI, &cfg.CSI)
	s.setBool("magnitude", fc.Magnitude, &cfg.Magnitude)
	s.setBool("phase", fc.Phase, &cfg.Phase)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
