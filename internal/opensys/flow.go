package opensys

// InputFunc supplies outer-input values over time for a driven machine.
type InputFunc func(t float64) []float64

type machineFlow struct {
	m  *Machine
	in InputFunc
}

// Closed adapts a machine with no input ports into a Flow suitable for
// integration.
func Closed(m *Machine) (Flow, error) {
	if len(m.inputs) > 0 {
		return nil, ErrOpenInputs
	}
	return &machineFlow{m: m}, nil
}

// Driven adapts a machine into a Flow by supplying its outer inputs from
// the given function (constant inputs are the common case).
func Driven(m *Machine, in InputFunc) Flow {
	return &machineFlow{m: m, in: in}
}

func (f *machineFlow) StateDim() int { return f.m.dim }

func (f *machineFlow) StateLabels() []string { return f.m.StateLabels() }

func (f *machineFlow) Derive(x State, p Params, t float64) (State, error) {
	var in []float64
	if f.in != nil {
		in = f.in(t)
	}
	return f.m.Eval(x, in, p, t)
}
