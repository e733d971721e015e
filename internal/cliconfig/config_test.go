package cliconfig

import (
	"runtime"
	"testing"

	"github.com/bft-labs/picoparser/pkg/csi"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %v, want %v", cfg.Workers, runtime.NumCPU())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.Interpolate {
		t.Error("Interpolate = true, want false")
	}
	if cfg.Fields() != csi.AllFields {
		t.Errorf("Fields() = %+v, want all", cfg.Fields())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid minimal config",
			config:  Config{Workers: 1, LogLevel: "debug", Magnitude: true},
			wantErr: false,
		},
		{
			name:    "zero workers",
			config:  Config{Workers: 0, LogLevel: "info", CSI: true},
			wantErr: true,
		},
		{
			name:    "negative workers",
			config:  Config{Workers: -3, LogLevel: "info", CSI: true},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			config:  Config{Workers: 2, LogLevel: "verbose", CSI: true},
			wantErr: true,
		},
		{
			name:    "no fields selected",
			config:  Config{Workers: 2, LogLevel: "warn"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"workers": true})

	workers := 4
	s.setInt("workers", 8, &workers)
	if workers != 4 {
		t.Errorf("changed flag overwritten: workers = %d", workers)
	}

	level := "info"
	s.setString("log-level", "", &level)
	if level != "info" {
		t.Errorf("empty value applied: level = %q", level)
	}
	s.setString("log-level", "debug", &level)
	if level != "debug" {
		t.Errorf("level = %q, want debug", level)
	}

	var watch bool
	s.setBool("watch", nil, &watch)
	if watch {
		t.Error("nil bool applied")
	}

	n := 3
	if err := s.setIntFromString("other", "-1", &n); err != nil || n != 3 {
		t.Errorf("non-positive applied: n = %d, err = %v", n, err)
	}
}

func TestLogger_Level(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"", "info"},
		{"bogus", "info"},
	}
	for _, tt := range tests {
		if got := Logger(tt.in).GetLevel().String(); got != tt.want {
			t.Errorf("Logger(%q) level = %s, want %s", tt.in, got, tt.want)
		}
	}
}
