// Package echo provides a stand-in channel that prints each driver command
// on its own line instead of sending it to hardware.
package echo

import (
	"io"

	"github.com/insulinmanager/dosectl/internal/domain"
)

// Sink collects the bytes of each command and, once its terminator arrives,
// checks it against the driver wire format and writes it on its own line.
type Sink struct {
	w       io.Writer
	pending string
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write implements io.Writer. A completed command that does not parse
// returns an error wrapping domain.ErrInvalidCommand and is not printed.
func (s *Sink) Write(p []byte) (int, error) {
	cmds, rest := domain.SplitCommands(s.pending + string(p))
	s.pending = rest

	for _, text := range cmds {
		if _, err := domain.ParseCommand(text); err != nil {
			return 0, err
		}
		if _, err := io.WriteString(s.w, text+"\n"); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Drain is a no-op; commands are printed as soon as they are complete.
func (s *Sink) Drain() error { return nil }

// Close prints any unterminated bytes left over.
func (s *Sink) Close() error {
	if s.pending == "" {
		return nil
	}
	_, err := io.WriteString(s.w, s.pending+"\n")
	s.pending = ""
	return err
}
