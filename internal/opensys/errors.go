package opensys

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a state or input slice whose length
	// disagrees with the declared interface.
	ErrDimensionMismatch = errors.New("opensys: dimension mismatch")

	// ErrRuntimeDimension indicates a dynamics or readout closure that
	// indexed outside its declared dimensions, or returned a vector of
	// the wrong length. Only detectable at first evaluation.
	ErrRuntimeDimension = errors.New("opensys: dynamics violated declared dimensions")

	// ErrNilDynamics indicates construction without a vector field.
	ErrNilDynamics = errors.New("opensys: nil dynamics")

	// ErrMissingReadout indicates a machine with output ports but no
	// readout function.
	ErrMissingReadout = errors.New("opensys: output ports declared without readout")

	// ErrOpenInputs indicates an attempt to treat a machine with
	// unconnected input ports as a closed flow.
	ErrOpenInputs = errors.New("opensys: machine has open input ports")
)

// EvalError wraps a failure raised while evaluating a system's dynamics
// or readout.
type EvalError struct {
	Op      string
	Time    float64
	Wrapped error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%s (t=%.4f): %v", e.Op, e.Time, e.Wrapped)
}

func (e *EvalError) Unwrap() error {
	return e.Wrapped
}
