package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/insulinmanager/dosectl/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	a.Info("dose issued",
		ports.String("command", "X1T580;"),
		ports.Int("units", 5),
		ports.Int64("steps", 580),
		ports.Bool("homed", false),
		ports.Duration("pace", 50*time.Millisecond),
		ports.Err(errors.New("boom")))

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	if got["message"] != "dose issued" || got["level"] != "info" {
		t.Errorf("unexpected envelope: %v", got)
	}
	if got["command"] != "X1T580;" {
		t.Errorf("command = %v", got["command"])
	}
	if got["units"] != float64(5) || got["steps"] != float64(580) {
		t.Errorf("units/steps = %v/%v", got["units"], got["steps"])
	}
	if got["homed"] != false {
		t.Errorf("homed = %v", got["homed"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestZerologAdapter_Level(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	a.Debug("command sent")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got %q", buf.String())
	}
	a.Warn("status not published")
	if buf.Len() == 0 {
		t.Error("warn should be written at info level")
	}
}

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf, zerolog.DebugLevel)
	l.Debug().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("console output %q does not contain message", buf.String())
	}
}
