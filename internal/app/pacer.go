package app

import (
	"fmt"
	"time"

	"github.com/insulinmanager/dosectl/internal/ports"
)

// FixedDelayPacer waits a fixed delay after each command. If the sink can
// drain its transmit buffer it is drained first, so the delay starts once the
// bytes are on the wire.
type FixedDelayPacer struct {
	Delay time.Duration

	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// NewFixedDelayPacer creates a pacer sleeping delay after each command.
func NewFixedDelayPacer(delay time.Duration) *FixedDelayPacer {
	return &FixedDelayPacer{Delay: delay, Sleep: time.Sleep}
}

// Pace implements ports.Pacer.
func (p *FixedDelayPacer) Pace(sink ports.ByteSink) error {
	if d, ok := sink.(ports.Drainer); ok {
		if err := d.Drain(); err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	}
	if p.Delay <= 0 {
		return nil
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(p.Delay)
	return nil
}

var _ ports.Pacer = (*FixedDelayPacer)(nil)
