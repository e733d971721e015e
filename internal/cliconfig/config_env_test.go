package cliconfig

import (
	"testing"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"PICOPARSER_WORKERS":     "6",
				"PICOPARSER_LOG_LEVEL":   "debug",
				"PICOPARSER_INTERPOLATE": "true",
				"PICOPARSER_MAGNITUDE":   "1",
				"PICOPARSER_WATCH":       "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Workers:     6,
				LogLevel:    "debug",
				Interpolate: true,
				Magnitude:   true,
				Watch:       true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"PICOPARSER_WORKERS":   "6",
				"PICOPARSER_LOG_LEVEL": "debug",
			},
			changed:  map[string]bool{"workers": true},
			initial:  Config{Workers: 2, LogLevel: "info"},
			expected: Config{Workers: 2, LogLevel: "debug"},
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"PICOPARSER_WORKERS": "many",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{},
			wantErr:  true,
		},
		{
			name: "non-positive workers ignored",
			envVars: map[string]string{
				"PICOPARSER_WORKERS": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{Workers: 3},
			expected: Config{Workers: 3},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"PICOPARSER_CSI":   "false",
				"PICOPARSER_PHASE": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{CSI: true, Phase: true, Timestamp: true},
			expected: Config{Timestamp: true},
		},
		{
			name:     "empty env leaves config alone",
			envVars:  map[string]string{},
			changed:  map[string]bool{},
			initial:  DefaultConfig(),
			expected: DefaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"WORKERS", "LOG_LEVEL", "INTERPOLATE", "TIMESTAMP", "CSI", "MAGNITUDE", "PHASE", "WATCH"} {
				t.Setenv(envPrefix+k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
