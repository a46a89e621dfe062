// Package configwatcher provides config file monitoring for dosectl serve.
// When enabled, it watches the TOML config file for changes and emits the
// reloaded calibration so a running dispatcher can apply it.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	logAdapter "github.com/insulinmanager/dosectl/internal/adapters/log"
	"github.com/insulinmanager/dosectl/internal/app"
	"github.com/insulinmanager/dosectl/internal/cliconfig"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// Plugin implements config watching functionality.
// It monitors a single config file and publishes the calibration it
// describes every time the file is written.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	path     string
	base     cliconfig.Config
	changed  map[string]bool
	logger   ports.Logger
	updates  chan app.Calibration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Editors often write a file in several steps.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		updates:       make(chan app.Calibration, 1),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Updates returns the channel reloaded calibrations are delivered on.
// It is never closed.
func (p *Plugin) Updates() <-chan app.Calibration {
	return p.updates
}

// Initialize sets up the plugin and starts the config watcher.
// A missing path disables the watcher without error.
func (p *Plugin) Initialize(ctx context.Context, s Settings) error {
	p.mu.Lock()
	p.path = s.Path
	p.base = s.Base
	p.changed = s.Changed
	p.logger = s.Logger
	if p.logger == nil {
		p.logger = logAdapter.NoopLogger{}
	}
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("Config watcher disabled: no config file configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// The directory is watched so that editors replacing the file via rename
	// keep producing events.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("Config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx, p.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Config watcher: watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, func() {
		p.reload(ctx)
	})
}

// reload re-reads the file and publishes the resulting calibration.
// Invalid files are logged and ignored so the running calibration stays.
func (p *Plugin) reload(ctx context.Context) {
	cal, err := p.load()
	if err != nil {
		p.logger.Warn("Config watcher: ignoring config change", ports.String("path", p.path), ports.Err(err))
		return
	}

	// A pending update that was never consumed is replaced by the newer one.
	select {
	case <-p.updates:
	default:
	}

	select {
	case p.updates <- cal:
		p.logger.Debug("Config watcher: calibration reloaded",
			ports.Int64("steps_per_unit", cal.StepsPerUnit),
			ports.Duration("pace_delay", cal.PaceDelay))
	case <-ctx.Done():
	}
}

// load applies the file and environment on top of the base config, so
// explicitly set flags keep winning across reloads.
func (p *Plugin) load() (app.Calibration, error) {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		return app.Calibration{}, fmt.Errorf("load config file: %w", err)
	}

	cfg := p.base
	if err := cliconfig.ApplyFileConfig(&cfg, fc, p.changed); err != nil {
		return app.Calibration{}, fmt.Errorf("apply config file: %w", err)
	}
	if err := cliconfig.ApplyEnvConfig(&cfg, p.changed); err != nil {
		return app.Calibration{}, fmt.Errorf("apply env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return app.Calibration{}, err
	}

	return app.Calibration{
		StepsPerUnit: cfg.StepsPerUnit,
		PaceDelay:    cfg.PaceDelay,
	}, nil
}
