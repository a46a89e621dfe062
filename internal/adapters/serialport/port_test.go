package serialport

import (
	"errors"
	"testing"

	"go.bug.st/serial"
)

func TestConfig_Mode(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantBaud int
	}{
		{"default baud", Config{Name: "/dev/ttyUSB0"}, DefaultBaudRate},
		{"custom baud", Config{Name: "/dev/ttyUSB0", BaudRate: 9600}, 9600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.cfg.Mode()
			if m.BaudRate != tt.wantBaud {
				t.Errorf("BaudRate = %d, want %d", m.BaudRate, tt.wantBaud)
			}
			if m.DataBits != 8 || m.Parity != serial.NoParity || m.StopBits != serial.OneStopBit {
				t.Errorf("mode = %+v, want 8N1", m)
			}
		})
	}
}

func TestOpen_NoPort(t *testing.T) {
	if _, err := Open(Config{}); !errors.Is(err, ErrNoPort) {
		t.Fatalf("Open error = %v, want ErrNoPort", err)
	}
}

func TestOpen_MissingDevice(t *testing.T) {
	if _, err := Open(Config{Name: "/dev/does-not-exist-dosectl"}); err == nil {
		t.Fatal("expected error opening a missing device")
	}
}

func TestPortInfo_String(t *testing.T) {
	tests := []struct {
		info PortInfo
		want string
	}{
		{PortInfo{Name: "/dev/ttyS0"}, "/dev/ttyS0"},
		{PortInfo{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"}, "/dev/ttyUSB0 (USB 0403:6001)"},
		{
			PortInfo{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", Product: "Uno", SerialNumber: "A1"},
			"/dev/ttyACM0 (USB 2341:0043 Uno serial=A1)",
		},
	}

	for _, tt := range tests {
		if got := tt.info.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
