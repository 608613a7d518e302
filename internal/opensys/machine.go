package opensys

import "fmt"

// CheckedDynamics is the internal, failure-aware form of a vector
// field. Composite systems built by the compositors use it directly.
type CheckedDynamics func(x State, in []float64, p Params, t float64) (State, error)

// CheckedReadout is the failure-aware form of a readout.
type CheckedReadout func(x State) ([]float64, error)

// Machine is a directed open system: a state space, ordered named input
// and output ports, a vector field over (state, inputs) and a readout
// that is a pure function of state.
type Machine struct {
	dim      int
	inputs   []string
	outputs  []string
	labels   []string
	dynamics CheckedDynamics
	readout  CheckedReadout
}

// NewMachine constructs a machine from user-supplied closures. The
// closures are guarded: an out-of-range access or wrong-length result
// surfaces later as ErrRuntimeDimension, not a crash.
func NewMachine(stateDim int, inputs, outputs []string, dynamics DynamicsFunc, readout ReadoutFunc) (*Machine, error) {
	if stateDim <= 0 {
		return nil, fmt.Errorf("%w: state dimension %d", ErrDimensionMismatch, stateDim)
	}
	if dynamics == nil {
		return nil, ErrNilDynamics
	}
	if len(outputs) > 0 && readout == nil {
		return nil, ErrMissingReadout
	}
	m := &Machine{
		dim:     stateDim,
		inputs:  cloneNames(inputs),
		outputs: cloneNames(outputs),
	}
	m.dynamics = guardDynamics(stateDim, dynamics)
	if readout != nil {
		m.readout = guardReadout(len(outputs), readout)
	}
	return m, nil
}

// NewCompositeMachine constructs a machine whose dynamics and readout
// may themselves fail; compositors use it so sub-system errors propagate
// intact.
func NewCompositeMachine(stateDim int, inputs, outputs []string, dynamics CheckedDynamics, readout CheckedReadout) (*Machine, error) {
	if stateDim <= 0 {
		return nil, fmt.Errorf("%w: state dimension %d", ErrDimensionMismatch, stateDim)
	}
	if dynamics == nil {
		return nil, ErrNilDynamics
	}
	if len(outputs) > 0 && readout == nil {
		return nil, ErrMissingReadout
	}
	return &Machine{
		dim:      stateDim,
		inputs:   cloneNames(inputs),
		outputs:  cloneNames(outputs),
		dynamics: dynamics,
		readout:  readout,
	}, nil
}

func (m *Machine) StateDim() int     { return m.dim }
func (m *Machine) Inputs() []string  { return cloneNames(m.inputs) }
func (m *Machine) Outputs() []string { return cloneNames(m.outputs) }

// StateLabels returns the per-component labels, or nil if none were set.
func (m *Machine) StateLabels() []string { return cloneNames(m.labels) }

// WithStateLabels returns a copy of the machine carrying human-readable
// state component labels. Labels are presentation data only; they never
// enter the evaluation path.
func (m *Machine) WithStateLabels(labels []string) *Machine {
	c := *m
	c.labels = cloneNames(labels)
	return &c
}

// Eval computes dx/dt at x with the given input-port values.
func (m *Machine) Eval(x State, in []float64, p Params, t float64) (State, error) {
	if len(x) != m.dim {
		return nil, &EvalError{Op: "dynamics", Time: t,
			Wrapped: fmt.Errorf("%w: state length %d, want %d", ErrDimensionMismatch, len(x), m.dim)}
	}
	if len(in) != len(m.inputs) {
		return nil, &EvalError{Op: "dynamics", Time: t,
			Wrapped: fmt.Errorf("%w: %d inputs, want %d", ErrDimensionMismatch, len(in), len(m.inputs))}
	}
	return m.dynamics(x, in, p, t)
}

// Output evaluates the readout at x.
func (m *Machine) Output(x State) ([]float64, error) {
	if len(m.outputs) == 0 {
		return nil, nil
	}
	if len(x) != m.dim {
		return nil, &EvalError{Op: "readout",
			Wrapped: fmt.Errorf("%w: state length %d, want %d", ErrDimensionMismatch, len(x), m.dim)}
	}
	return m.readout(x)
}

func guardDynamics(dim int, dynamics DynamicsFunc) CheckedDynamics {
	return func(x State, in []float64, p Params, t float64) (dx State, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				dx = nil
				err = &EvalError{Op: "dynamics", Time: t,
					Wrapped: fmt.Errorf("%w: %v", ErrRuntimeDimension, rec)}
			}
		}()
		dx = dynamics(x, in, p, t)
		if len(dx) != dim {
			return nil, &EvalError{Op: "dynamics", Time: t,
				Wrapped: fmt.Errorf("%w: derivative length %d, want %d", ErrRuntimeDimension, len(dx), dim)}
		}
		return dx, nil
	}
}

func guardReadout(nout int, readout ReadoutFunc) CheckedReadout {
	return func(x State) (out []float64, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				out = nil
				err = &EvalError{Op: "readout",
					Wrapped: fmt.Errorf("%w: %v", ErrRuntimeDimension, rec)}
			}
		}()
		out = readout(x)
		if len(out) != nout {
			return nil, &EvalError{Op: "readout",
				Wrapped: fmt.Errorf("%w: %d outputs, want %d", ErrRuntimeDimension, len(out), nout)}
		}
		return out, nil
	}
}

func cloneNames(names []string) []string {
	if names == nil {
		return nil
	}
	c := make([]string, len(names))
	copy(c, names)
	return c
}
