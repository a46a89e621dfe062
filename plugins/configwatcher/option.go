package configwatcher

import (
	"context"

	"github.com/insulinmanager/dosectl/internal/cliconfig"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// Settings describes what the watcher reloads.
type Settings struct {
	// Path is the TOML config file to watch.
	Path string

	// Base is the configuration resolved at startup. Each reload applies the
	// file and the environment on top of a copy of it.
	Base cliconfig.Config

	// Changed names the flags set on the command line. Reloads never
	// override them.
	Changed map[string]bool

	Logger ports.Logger
}

// Watch creates and initializes a watcher in one step.
//
// Usage:
//
//	w, err := configwatcher.Watch(ctx, configwatcher.DefaultConfig(), configwatcher.Settings{
//	    Path:    cfgPath,
//	    Base:    base,
//	    Changed: changed,
//	    Logger:  logger,
//	})
//	defer w.Shutdown(context.Background())
//	err = dispatcher.Run(ctx, os.Stdin, w.Updates())
func Watch(ctx context.Context, cfg Config, s Settings) (*Plugin, error) {
	p := New(cfg)
	if err := p.Initialize(ctx, s); err != nil {
		return nil, err
	}
	return p, nil
}
