package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/insulinmanager/dosectl/internal/domain"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// Controller converts doses into driver commands for a single motor.
// It owns the cumulative step count, which starts at zero and only changes
// through dose conversion and homing.
//
// A Controller is not safe for concurrent use. It expects one logical caller.
type Controller struct {
	sink         ports.ByteSink
	pacer        ports.Pacer
	statusRepo   ports.StatusRepository
	logger       ports.Logger
	stepsPerUnit int64
	now          func() time.Time

	steps       int64
	homed       bool
	lastCommand string
	lastDose    int
}

// Option configures optional behavior of a Controller.
type Option func(*Controller)

// WithStepsPerUnit overrides the calibration factor.
// Non-positive values are ignored.
func WithStepsPerUnit(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.stepsPerUnit = n
		}
	}
}

// WithPacer sets the pacing strategy used between homing commands.
func WithPacer(p ports.Pacer) Option {
	return func(c *Controller) {
		if p != nil {
			c.pacer = p
		}
	}
}

// WithLogger sets a logger for structured logging.
func WithLogger(l ports.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStatusRepository publishes a snapshot after every operation.
func WithStatusRepository(r ports.StatusRepository) Option {
	return func(c *Controller) {
		c.statusRepo = r
	}
}

// WithClock overrides the time source used for status snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController creates a Controller writing to sink.
// Defaults: DefaultStepsPerUnit, a FixedDelayPacer of DefaultPaceDelay and no logging.
func NewController(sink ports.ByteSink, opts ...Option) *Controller {
	c := &Controller{
		sink:         sink,
		pacer:        NewFixedDelayPacer(domain.DefaultPaceDelay),
		logger:       noopLogger{},
		stepsPerUnit: domain.DefaultStepsPerUnit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Steps returns the cumulative step count since the last reset.
func (c *Controller) Steps() int64 {
	return c.steps
}

// StepsPerUnit returns the active calibration factor.
func (c *Controller) StepsPerUnit() int64 {
	return c.stepsPerUnit
}

// Homed reports whether the controller has been homed and has not moved since.
func (c *Controller) Homed() bool {
	return c.homed
}

// SetStepsPerUnit replaces the calibration factor for subsequent doses.
// Steps already issued are not rescaled.
func (c *Controller) SetStepsPerUnit(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: steps per unit must be positive, got %d", domain.ErrInvalidConfig, n)
	}
	if n != c.stepsPerUnit {
		c.logger.Info("calibration changed", ports.Int64("from", c.stepsPerUnit), ports.Int64("to", n))
	}
	c.stepsPerUnit = n
	return nil
}

// SetPaceDelay changes the delay between homing commands. A FixedDelayPacer
// already in use keeps its configuration and only takes the new delay; any
// other pacer is replaced by a FixedDelayPacer.
func (c *Controller) SetPaceDelay(d time.Duration) {
	if p, ok := c.pacer.(*FixedDelayPacer); ok {
		p.Delay = d
		return
	}
	c.pacer = NewFixedDelayPacer(d)
}


// ConvertDoseToSteps adds dose*StepsPerUnit to the cumulative step count.
// Nothing is transmitted.
func (c *Controller) ConvertDoseToSteps(dose int) error {
	total, err := c.totalAfter(dose)
	if err != nil {
		return err
	}
	c.commitDose(dose, total)
	return nil
}

// FrameAndSend transmits a move command to the absolute position steps,
// one byte at a time.
func (c *Controller) FrameAndSend(steps int64) error {
	return c.send(domain.MoveTo(steps))
}

// IssueDose converts dose into steps and moves the motor to the new total.
// The cumulative count is only updated once the whole command was written.
func (c *Controller) IssueDose(ctx context.Context, dose int) error {
	total, err := c.totalAfter(dose)
	if err != nil {
		return err
	}

	if err := c.FrameAndSend(total); err != nil {
		return err
	}
	c.commitDose(dose, total)

	c.logger.Info("dose issued",
		ports.Int("units", dose),
		ports.Int64("steps", total),
		ports.Int64("steps_per_unit", c.stepsPerUnit))

	c.publish(ctx)
	return nil
}

// ResetToHome zeroes the cumulative step count and sends the homing sequence:
// stop, index-search mode, seek index. Each command is followed by the pacer.
//
// The count is reset before anything is sent, but the controller only reports
// Homed once the whole sequence went out. Homing completion is reported
// by the driver asynchronously and is not observed here. Once the first
// command is written the sequence runs to the end.
func (c *Controller) ResetToHome(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.steps = 0
	c.homed = false
	c.lastDose = 0

	for _, cmd := range domain.HomingSequence() {
		if err := c.send(cmd); err != nil {
			c.publish(ctx)
			return err
		}
		if err := c.pacer.Pace(c.sink); err != nil {
			c.publish(ctx)
			return fmt.Errorf("pace after %s: %w", cmd, err)
		}
	}

	c.homed = true
	c.logger.Info("homing sequence sent")
	c.publish(ctx)
	return nil
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() domain.Status {
	return domain.Status{
		Steps:        c.steps,
		StepsPerUnit: c.stepsPerUnit,
		LastCommand:  c.lastCommand,
		LastDose:     c.lastDose,
		Homed:        c.homed,
		UpdatedAt:    c.now(),
	}
}

func (c *Controller) totalAfter(dose int) (int64, error) {
	if dose < 0 {
		return 0, fmt.Errorf("%w: %d units", domain.ErrInvalidDose, dose)
	}
	add, ok := domain.StepsForDose(dose, c.stepsPerUnit)
	if !ok || add > math.MaxInt64-c.steps {
		return 0, fmt.Errorf("%w: %d units overflows the step counter", domain.ErrInvalidDose, dose)
	}
	return c.steps + add, nil
}

func (c *Controller) commitDose(dose int, total int64) {
	c.steps = total
	c.lastDose = dose
	if total != 0 {
		c.homed = false
	}
}

// send writes a command byte by byte.
func (c *Controller) send(cmd domain.Command) error {
	text := cmd.String()
	for i := 0; i < len(text); i++ {
		if _, err := c.sink.Write([]byte{text[i]}); err != nil {
			return &domain.ChannelWriteError{Command: text, Offset: i, Err: err}
		}
	}
	c.lastCommand = text
	c.logger.Debug("command sent", ports.String("command", text))
	return nil
}

// publish saves a snapshot. Failures are logged and otherwise ignored.
func (c *Controller) publish(ctx context.Context) {
	if c.statusRepo == nil {
		return
	}
	if err := c.statusRepo.Save(ctx, c.Status()); err != nil {
		c.logger.Warn("failed to publish status", ports.Err(err))
	}
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
