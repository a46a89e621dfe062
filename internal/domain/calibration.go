package domain

import "time"

// DefaultStepsPerUnit is the number of motor steps that deliver one unit of
// insulin with the current syringe and motor pairing. Recalibrate per device.
const DefaultStepsPerUnit = 116

// DefaultPaceDelay is the gap left after each homing command so the driver
// can consume it before the next one arrives.
const DefaultPaceDelay = 50 * time.Millisecond

// StepsForDose returns dose*stepsPerUnit and false if the product overflows int64.
func StepsForDose(dose int, stepsPerUnit int64) (int64, bool) {
	if dose == 0 || stepsPerUnit == 0 {
		return 0, true
	}
	d := int64(dose)
	steps := d * stepsPerUnit
	if steps/stepsPerUnit != d {
		return 0, false
	}
	return steps, true
}
