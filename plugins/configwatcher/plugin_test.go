package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/insulinmanager/dosectl/internal/app"
	"github.com/insulinmanager/dosectl/internal/cliconfig"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func baseConfig() cliconfig.Config {
	cfg := cliconfig.DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	return cfg
}

func startWatcher(t *testing.T, s Settings) *Plugin {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	p, err := Watch(ctx, Config{DebounceDelay: 10 * time.Millisecond}, s)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	t.Cleanup(func() { p.Shutdown(context.Background()) })
	return p
}

func waitUpdate(t *testing.T, p *Plugin) app.Calibration {
	t.Helper()
	select {
	case cal := <-p.Updates():
		return cal
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for calibration update")
		return app.Calibration{}
	}
}

func TestPlugin_ReloadsCalibration(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	writeConfig(t, path, "steps_per_unit = 116\n")

	p := startWatcher(t, Settings{Path: path, Base: baseConfig()})

	writeConfig(t, path, "steps_per_unit = 120\npace_delay = \"10ms\"\n")

	cal := waitUpdate(t, p)
	if cal.StepsPerUnit != 120 {
		t.Errorf("StepsPerUnit = %d, want 120", cal.StepsPerUnit)
	}
	if cal.PaceDelay != 10*time.Millisecond {
		t.Errorf("PaceDelay = %v, want 10ms", cal.PaceDelay)
	}
}

func TestPlugin_RespectsChangedFlags(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	writeConfig(t, path, "")

	base := baseConfig()
	base.StepsPerUnit = 100

	p := startWatcher(t, Settings{
		Path:    path,
		Base:    base,
		Changed: map[string]bool{"steps-per-unit": true},
	})

	writeConfig(t, path, "steps_per_unit = 120\npace_delay = \"5ms\"\n")

	cal := waitUpdate(t, p)
	if cal.StepsPerUnit != 100 {
		t.Errorf("StepsPerUnit = %d, want 100 (flag should win)", cal.StepsPerUnit)
	}
	if cal.PaceDelay != 5*time.Millisecond {
		t.Errorf("PaceDelay = %v, want 5ms", cal.PaceDelay)
	}
}

func TestPlugin_IgnoresInvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	writeConfig(t, path, "")

	p := startWatcher(t, Settings{Path: path, Base: baseConfig()})

	writeConfig(t, path, "pace_delay = \"later\"\n")

	select {
	case cal := <-p.Updates():
		t.Fatalf("unexpected update for invalid config: %+v", cal)
	case <-time.After(300 * time.Millisecond):
	}

	writeConfig(t, path, "steps_per_unit = 118\n")
	if cal := waitUpdate(t, p); cal.StepsPerUnit != 118 {
		t.Errorf("StepsPerUnit = %d, want 118", cal.StepsPerUnit)
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	writeConfig(t, path, "")

	p := startWatcher(t, Settings{Path: path, Base: baseConfig()})

	writeConfig(t, filepath.Join(tmpDir, "other.toml"), "steps_per_unit = 120\n")

	select {
	case cal := <-p.Updates():
		t.Fatalf("unexpected update for unrelated file: %+v", cal)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPlugin_DisabledWhenPathEmpty(t *testing.T) {
	p := New(DefaultConfig())

	if err := p.Initialize(context.Background(), Settings{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	p := New(DefaultConfig())

	err := p.Initialize(context.Background(), Settings{
		Path: filepath.Join(t.TempDir(), "missing", "config.toml"),
	})
	if err == nil {
		t.Fatal("Initialize expected error for missing directory")
	}
}

func TestPlugin_Name(t *testing.T) {
	p := New(DefaultConfig())
	if p.Name() != "configwatcher" {
		t.Errorf("Name() = %q, want configwatcher", p.Name())
	}
}
