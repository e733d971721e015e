package cliconfig

import "os"

const envPrefix = "PICOPARSER_"

// ApplyEnvConfig applies PICOPARSER_* environment variables. Values override
// the config file but not flags that were set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("workers", os.Getenv(envPrefix+"WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	s.setString("log-level", os.Getenv(envPrefix+"LOG_LEVEL"), &cfg.LogLevel)

	s.setBoolFromString("interpolate", os.Getenv(envPrefix+"INTERPOLATE"), &cfg.Interpolate)
	s.setBoolFromString("timestamp", os.Getenv(envPrefix+"TIMESTAMP"), &cfg.Timestamp)
	s.setBoolFromString("csi", os.Getenv(envPrefix+"CSI"), &cfg.CSI)
	s.setBoolFromString("magnitude", os.Getenv(envPrefix+"MAGNITUDE"), &cfg.Magnitude)
	s.setBoolFromString("phase", os.Getenv(envPrefix+"PHASE"), &cfg.Phase)
	s.setBoolFromString("watch", os.Getenv(envPrefix+"WATCH"), &cfg.Watch)

	return nil
}
