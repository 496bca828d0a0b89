// Package linopt assembles linear optical circuits into runnable photonic
// processors. A processor wraps a circuit with heralded ancilla modes,
// typed ports, detectors and post-selection rules, then produces sampled or
// exact output distributions through a pluggable simulation backend.
package linopt

import (
	"errors"
	"fmt"
)

var (
	// ErrSealed reports a structural change attempted after a
	// post-selection rule was set on the processor.
	ErrSealed = errors.New("linopt: processor is sealed by its post-selection rule")

	// ErrNoInput reports a simulation run requested before WithInput.
	ErrNoInput = errors.New("linopt: no input state set")

	// ErrWrongCommand reports a simulation run the processor's backend does
	// not serve natively.
	ErrWrongCommand = errors.New("linopt: backend does not serve this command")
)

// An UnavailableModeError reports an attempt to claim modes that are out of
// range, already occupied, or closed to further composition.
type UnavailableModeError struct {
	Modes  []int
	Reason string
}

func (e *UnavailableModeError) Error() string {
	if len(e.Modes) == 1 {
		return fmt.Sprintf("linopt: mode %d unavailable: %s", e.Modes[0], e.Reason)
	}
	return fmt.Sprintf("linopt: modes %v unavailable: %s", e.Modes, e.Reason)
}
