// Package serialport opens the serial link to the motor driver using go.bug.st/serial.
package serialport

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the driver's factory line speed.
const DefaultBaudRate = 115200

// ErrNoPort is returned when no port name is configured.
var ErrNoPort = errors.New("serialport: no port configured")

// Config describes the serial line. The link is always 8N1.
type Config struct {
	Name     string
	BaudRate int
}

// Mode returns the go.bug.st/serial mode for cfg.
func (cfg Config) Mode() *serial.Mode {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the configured port. The returned port also satisfies
// ports.Drainer, so pacing waits for each command to leave the UART.
func Open(cfg Config) (serial.Port, error) {
	if cfg.Name == "" {
		return nil, ErrNoPort
	}
	port, err := serial.Open(cfg.Name, cfg.Mode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Name, err)
	}
	return port, nil
}

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts enumerates serial ports with USB details where available.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

// String formats the port for listing.
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s (USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += " " + p.Product
	}
	if p.SerialNumber != "" {
		s += " serial=" + p.SerialNumber
	}
	return s + ")"
}
