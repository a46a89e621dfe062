package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (DOSECTL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", os.Getenv("DOSECTL_PORT"), &cfg.Port)
	s.setString("status-file", os.Getenv("DOSECTL_STATUS_FILE"), &cfg.StatusFile)
	s.setString("requests", os.Getenv("DOSECTL_REQUESTS"), &cfg.RequestsPath)
	s.setString("log-level", os.Getenv("DOSECTL_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("baud", os.Getenv("DOSECTL_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setInt64FromString("steps-per-unit", os.Getenv("DOSECTL_STEPS_PER_UNIT"), &cfg.StepsPerUnit); err != nil {
		return err
	}
	if err := s.setDuration("pace", os.Getenv("DOSECTL_PACE_DELAY"), &cfg.PaceDelay); err != nil {
		return err
	}

	s.setBoolFromString("skip-redundant-home", os.Getenv("DOSECTL_SKIP_REDUNDANT_HOME"), &cfg.SkipRedundantHome)
	s.setBoolFromString("dry-run", os.Getenv("DOSECTL_DRY_RUN"), &cfg.DryRun)

	return nil
}
