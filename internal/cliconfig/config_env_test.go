package cliconfig

import (
	"testing"
	"time"
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
				"DOSECTL_PORT":           "/dev/ttyACM0",
				"DOSECTL_BAUD_RATE":      "57600",
				"DOSECTL_STEPS_PER_UNIT": "118",
				"DOSECTL_PACE_DELAY":     "100ms",
				"DOSECTL_STATUS_FILE":    "/run/dosectl.json",
				"DOSECTL_REQUESTS":       "/dev/rfcomm0",
				"DOSECTL_LOG_LEVEL":      "warn",
				"DOSECTL_DRY_RUN":        "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Port:         "/dev/ttyACM0",
				BaudRate:     57600,
				StepsPerUnit: 118,
				PaceDelay:    100 * time.Millisecond,
				StatusFile:   "/run/dosectl.json",
				RequestsPath: "/dev/rfcomm0",
				LogLevel:     "warn",
				DryRun:       true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"DOSECTL_PORT":           "/dev/env",
				"DOSECTL_STEPS_PER_UNIT": "118",
			},
			changed: map[string]bool{"port": true},
			initial: Config{Port: "/dev/flag"},
			expected: Config{
				Port:         "/dev/flag",
				StepsPerUnit: 118,
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"DOSECTL_PACE_DELAY": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"DOSECTL_BAUD_RATE": "fast",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid steps per unit",
			envVars: map[string]string{
				"DOSECTL_STEPS_PER_UNIT": "1.5",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "ignores non-positive numbers",
			envVars: map[string]string{
				"DOSECTL_STEPS_PER_UNIT": "-4",
				"DOSECTL_BAUD_RATE":      "0",
			},
			changed:  map[string]bool{},
			initial:  DefaultConfig(),
			expected: DefaultConfig(),
		},
		{
			name: "handles bool '1' as true",
			envVars: map[string]string{
				"DOSECTL_SKIP_REDUNDANT_HOME": "1",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{SkipRedundantHome: true},
		},
		{
			name: "handles bool 'false' as false",
			envVars: map[string]string{
				"DOSECTL_DRY_RUN": "false",
			},
			changed:  map[string]bool{},
			initial:  Config{DryRun: true},
			expected: Config{DryRun: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
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

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	trueVal := true

	fileConf := FileConfig{
		Port:         "/dev/file",
		StepsPerUnit: 110,
		PaceDelay:    "20ms",
		DryRun:       &trueVal,
	}

	t.Setenv("DOSECTL_PORT", "/dev/env")
	t.Setenv("DOSECTL_STEPS_PER_UNIT", "112")

	changed := map[string]bool{
		"port": true,
	}

	cfg := DefaultConfig()
	cfg.Port = "/dev/cli"

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.Port != "/dev/cli" {
		t.Errorf("Port = %v, want /dev/cli (CLI should win)", cfg.Port)
	}
	if cfg.StepsPerUnit != 112 {
		t.Errorf("StepsPerUnit = %v, want 112 (env should override file)", cfg.StepsPerUnit)
	}
	if cfg.PaceDelay != 20*time.Millisecond {
		t.Errorf("PaceDelay = %v, want 20ms (file should set)", cfg.PaceDelay)
	}
	if !cfg.DryRun {
		t.Errorf("DryRun = %v, want true (file should set)", cfg.DryRun)
	}
}
