package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the dosing domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidDose is returned when a dose is negative or would overflow the step counter.
	ErrInvalidDose = errors.New("dosectl: invalid dose")

	// ErrChannelWrite is returned when the output channel rejects a write.
	ErrChannelWrite = errors.New("dosectl: channel write failed")

	// ErrInvalidRequest is returned when a request line is neither a dose nor "reset".
	ErrInvalidRequest = errors.New("dosectl: invalid request")

	// ErrInvalidCommand is returned when a wire command cannot be parsed.
	ErrInvalidCommand = errors.New("dosectl: invalid command")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("dosectl: invalid configuration")
)

// ChannelWriteError describes a failed write of a single framed command.
type ChannelWriteError struct {
	// Command is the wire text that was being transmitted.
	Command string

	// Offset is the index of the byte whose write failed.
	Offset int

	Err error
}

func (e *ChannelWriteError) Error() string {
	return fmt.Sprintf("%v: %q at byte %d: %v", ErrChannelWrite, e.Command, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ChannelWriteError) Unwrap() error { return e.Err }

// Is reports ErrChannelWrite as a match so callers need not know the concrete type.
func (e *ChannelWriteError) Is(target error) bool { return target == ErrChannelWrite }
