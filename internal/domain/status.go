package domain

import "time"

// Status is a snapshot of the controller published for observers.
// It is never fed back into the controller: the step count always starts at 0.
type Status struct {
	Steps        int64     `json:"steps"`
	StepsPerUnit int64     `json:"steps_per_unit"`
	LastCommand  string    `json:"last_command,omitempty"`
	LastDose     int       `json:"last_dose"`
	Homed        bool      `json:"homed"`
	UpdatedAt    time.Time `json:"updated_at"`
}
