package opensys

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// Params carries model parameters (rates, coefficients). The core never
// interprets them; they are passed through unmodified to every dynamics
// call.
type Params map[string]float64

// DynamicsFunc is the vector field of a directed system:
// dx/dt = f(x, inputs, params, t).
type DynamicsFunc func(x State, in []float64, p Params, t float64) State

// ReadoutFunc maps a system's own state to its output-port values. It
// must not depend on anything but the state.
type ReadoutFunc func(x State) []float64

// SharedDynamicsFunc is the vector field of an undirected system,
// expressed directly over its exposed variables.
type SharedDynamicsFunc func(x State, p Params, t float64) State

// Flow is what steppers and the simulator consume: a closed vector
// field over a known state dimension.
type Flow interface {
	StateDim() int
	Derive(x State, p Params, t float64) (State, error)
}
