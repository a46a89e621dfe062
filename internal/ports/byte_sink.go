package ports

import "io"

// ByteSink is the output channel to the motor driver.
// The controller writes commands one byte per Write call.
// A serial.Port from go.bug.st/serial satisfies this interface.
type ByteSink = io.Writer

// Drainer is implemented by sinks that can block until every written byte
// has left the transmit buffer.
type Drainer interface {
	Drain() error
}
