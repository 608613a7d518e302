package sim

import "github.com/san-kum/opendyn/internal/opensys"

// Stepper advances a flow by one step of size dt.
type Stepper interface {
	Step(f opensys.Flow, x opensys.State, p opensys.Params, t, dt float64) (opensys.State, error)
}

// AdaptiveStepper also estimates local error and suggests the next
// step size.
type AdaptiveStepper interface {
	Stepper
	StepAdaptive(f opensys.Flow, x opensys.State, p opensys.Params, t, dt, tol float64) (opensys.State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x opensys.State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x opensys.State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MinDt         float64
	MaxDt         float64
	MaxSteps      int
	Adaptive      bool
	ValidateState bool
	Seed          int64
	Params        opensys.Params
}

type Result struct {
	Times      []float64
	States     []opensys.State
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded state, or nil for an empty run.
func (r *Result) Final() opensys.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
