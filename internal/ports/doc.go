// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the dosing core and the outside world.
// They define what the controller needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [ByteSink]: Byte-oriented output channel to the motor driver
//   - [Drainer]: Optional sink capability reporting write completion
//   - [Pacer]: Spacing between consecutive driver commands
//   - [StatusRepository]: Publishes controller snapshots for observers
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with a serial
// port, a JSON status file, zerolog and so on.
package ports
