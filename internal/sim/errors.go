package sim

import (
	"errors"
	"fmt"
)

var (
	ErrStepTooSmall = errors.New("step size fell below minimum")
	ErrUnstable     = errors.New("state became non-finite")
	ErrMaxSteps     = errors.New("step limit exceeded")
)

// NumericalError reports where in a run the integration failed.
type NumericalError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *NumericalError) Unwrap() error { return e.Wrapped }
