// Package dosectl converts insulin doses into stepper-motor driver commands
// and homes the motor.
//
// Example usage:
//
//	port, err := serial.Open("/dev/ttyUSB0", &serial.Mode{BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := dosectl.New(port)
//	if err := ctrl.ResetToHome(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	if err := ctrl.IssueDose(context.Background(), 5); err != nil { // sends X1T580;
//	    log.Fatal(err)
//	}
package dosectl

import (
	"io"
	"time"

	"github.com/insulinmanager/dosectl/internal/app"
	"github.com/insulinmanager/dosectl/internal/domain"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// Controller owns the cumulative step count of one motor.
// It is not safe for concurrent use.
type Controller = app.Controller

// Option configures a Controller.
type Option = app.Option

// Dispatcher handles "reset" and dose request lines.
type Dispatcher = app.Dispatcher

// Calibration carries reloaded settings into a running Dispatcher.
type Calibration = app.Calibration

// Status is the snapshot published after each operation.
type Status = domain.Status

// Logger is the structured logger accepted by WithLogger.
type Logger = ports.Logger

// StatusRepository receives status snapshots.
type StatusRepository = ports.StatusRepository

// DefaultStepsPerUnit is the number of motor steps per insulin unit.
const DefaultStepsPerUnit = domain.DefaultStepsPerUnit

// DefaultPaceDelay is the delay between homing commands.
const DefaultPaceDelay = domain.DefaultPaceDelay

// Errors returned by the Controller and Dispatcher. Check with errors.Is.
var (
	ErrInvalidDose    = domain.ErrInvalidDose
	ErrChannelWrite   = domain.ErrChannelWrite
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrInvalidConfig  = domain.ErrInvalidConfig
)

// New creates a Controller writing commands to w one byte at a time.
// If w also has a Drain() error method, it is drained before every pacing delay.
func New(w io.Writer, opts ...Option) *Controller {
	return app.NewController(w, opts...)
}

// NewDispatcher creates a Dispatcher driving ctrl.
func NewDispatcher(ctrl *Controller, logger Logger) *Dispatcher {
	return app.NewDispatcher(ctrl, logger)
}

// WithStepsPerUnit overrides the calibration factor. Non-positive values are ignored.
func WithStepsPerUnit(n int64) Option {
	return app.WithStepsPerUnit(n)
}

// WithPaceDelay sets the fixed delay between homing commands.
func WithPaceDelay(d time.Duration) Option {
	return app.WithPacer(app.NewFixedDelayPacer(d))
}

// WithLogger sets a logger for structured logging.
func WithLogger(l Logger) Option {
	return app.WithLogger(l)
}

// WithStatusRepository publishes a snapshot after every operation.
func WithStatusRepository(r StatusRepository) Option {
	return app.WithStatusRepository(r)
}
