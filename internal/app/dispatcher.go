package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/insulinmanager/dosectl/internal/domain"
	"github.com/insulinmanager/dosectl/internal/ports"
)

// ResetRequest is the request line that triggers the homing sequence.
const ResetRequest = "reset"

// Calibration carries reloaded settings into a running Dispatcher.
type Calibration struct {
	StepsPerUnit int64
	PaceDelay    time.Duration
}

// Dispatcher turns line-oriented requests into controller operations.
// A request is either "reset" or a decimal number of insulin units.
type Dispatcher struct {
	ctrl   *Controller
	logger ports.Logger

	// SkipRedundantHome skips "reset" while the motor is already homed at step 0.
	SkipRedundantHome bool
}

// NewDispatcher creates a Dispatcher driving ctrl.
func NewDispatcher(ctrl *Controller, logger ports.Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Dispatcher{ctrl: ctrl, logger: logger}
}

// Handle executes a single request line. Blank lines are ignored.
func (d *Dispatcher) Handle(ctx context.Context, line string) error {
	req := strings.TrimSpace(line)
	if req == "" {
		return nil
	}

	if strings.EqualFold(req, ResetRequest) {
		if d.SkipRedundantHome && d.ctrl.Homed() && d.ctrl.Steps() == 0 {
			d.logger.Info("motor already at the starting position, reset skipped")
			return nil
		}
		return d.ctrl.ResetToHome(ctx)
	}

	dose, err := strconv.Atoi(req)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRequest, req)
	}
	return d.ctrl.IssueDose(ctx, dose)
}

// Apply installs new calibration on the controller.
func (d *Dispatcher) Apply(cal Calibration) error {
	if err := d.ctrl.SetStepsPerUnit(cal.StepsPerUnit); err != nil {
		return err
	}
	d.ctrl.SetPaceDelay(cal.PaceDelay)
	return nil
}

type scanResult struct {
	line string
	err  error
	eof  bool
}

// Run reads requests from r until EOF or ctx is done, handling each on the
// calling goroutine. Calibration updates received on reloads are applied
// between requests. Failed requests are logged and do not stop the loop.
//
// Returns nil on EOF, the context error on cancellation, or the read error.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, reloads <-chan Calibration) error {
	lines := make(chan scanResult)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanResult{line: scanner.Text()}:
			case <-ctx.Done():
				return
			}
		}
		res := scanResult{eof: true}
		if err := scanner.Err(); err != nil {
			res = scanResult{err: err}
		}
		select {
		case lines <- res:
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cal, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if err := d.Apply(cal); err != nil {
				d.logger.Error("failed to apply calibration", ports.Err(err))
				continue
			}
			d.logger.Info("calibration applied",
				ports.Int64("steps_per_unit", cal.StepsPerUnit),
				ports.Duration("pace_delay", cal.PaceDelay))

		case res, ok := <-lines:
			if !ok || res.eof {
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("read requests: %w", res.err)
			}
			if err := d.Handle(ctx, res.line); err != nil {
				d.logger.Error("request failed", ports.String("request", res.line), ports.Err(err))
			}
		}
	}
}
