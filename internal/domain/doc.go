// Package domain contains the core value objects and errors for dosectl.
//
// This package has no dependencies on infrastructure concerns (serial ports,
// file system, logging). It holds the wire protocol of the piezo motor driver
// and the calibration that ties insulin units to motor steps.
//
// # Values
//
//   - [Command]: A structured driver instruction that renders to the wire format
//   - [Status]: A snapshot of the controller position for observers
//
// # Protocol
//
// Driver commands are ASCII, case-sensitive and terminated by ';':
//
//	X1T<N>;           move to absolute step position N
//	X1S;              stop motion
//	X1N4;             enter index-search mode
//	X1I-10000,0,400;  seek the quadrature index backwards
package domain
