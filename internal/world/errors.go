package world

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimeStep is returned for a non-positive or non-finite dt.
	ErrInvalidTimeStep = errors.New("world: time step must be positive and finite")

	// ErrReentrantStep is returned when Step is called from inside a step.
	ErrReentrantStep = errors.New("world: step called while another step is running")

	// ErrMissingCollaborator is returned when the solver, broadphase or
	// nearphase has not been set.
	ErrMissingCollaborator = errors.New("world: solver, broadphase and nearphase are required")
)

// StepError wraps a collaborator failure with the step it happened in.
type StepError struct {
	Step    int
	Time    float64
	Phase   string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("world: step %d (t=%.4f) %s: %v", e.Step, e.Time, e.Phase, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
