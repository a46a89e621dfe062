package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port              string `toml:"port"`
	BaudRate          int    `toml:"baud_rate"`
	StepsPerUnit      int64  `toml:"steps_per_unit"`
	PaceDelay         string `toml:"pace_delay"`
	StatusFile        string `toml:"status_file"`
	Requests          string `toml:"requests"`
	LogLevel          string `toml:"log_level"`
	SkipRedundantHome *bool  `toml:"skip_redundant_home"`
	DryRun            *bool  `toml:"dry_run"`
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

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.dosectl/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".dosectl", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("status-file", fc.StatusFile, &cfg.StatusFile)
	s.setString("requests", fc.Requests, &cfg.RequestsPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setInt64("steps-per-unit", fc.StepsPerUnit, &cfg.StepsPerUnit)

	if err := s.setDuration("pace", fc.PaceDelay, &cfg.PaceDelay); err != nil {
		return err
	}

	s.setBool("skip-redundant-home", fc.SkipRedundantHome, &cfg.SkipRedundantHome)
	s.setBool("dry-run", fc.DryRun, &cfg.DryRun)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
