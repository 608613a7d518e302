package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/opendyn/internal/integrators"
	"github.com/san-kum/opendyn/internal/metrics"
	"github.com/san-kum/opendyn/internal/models"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/sim"
)

type ModelFunc func(params map[string]float64) (opensys.Flow, error)

type StepperFunc func(seed int64) sim.Stepper

type Registry struct {
	models   map[string]ModelFunc
	steppers map[string]StepperFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		models:   make(map[string]ModelFunc),
		steppers: make(map[string]StepperFunc),
	}

	r.models["sir"] = func(params map[string]float64) (opensys.Flow, error) {
		return models.SIR()
	}
	r.models["sir-vital"] = func(params map[string]float64) (opensys.Flow, error) {
		return models.SIRVital()
	}
	r.models["sir-directed"] = func(params map[string]float64) (opensys.Flow, error) {
		m, err := models.DirectedSIR()
		if err != nil {
			return nil, err
		}
		return opensys.Closed(m)
	}
	r.models["stages"] = func(params map[string]float64) (opensys.Flow, error) {
		n := int(params["stages"])
		if n == 0 {
			n = 3
		}
		return models.Stages(n)
	}

	r.steppers["euler"] = func(seed int64) sim.Stepper { return integrators.NewEuler() }
	r.steppers["rk4"] = func(seed int64) sim.Stepper { return integrators.NewRK4() }
	r.steppers["rk45"] = func(seed int64) sim.Stepper { return integrators.NewRK45() }
	r.steppers["stochastic"] = func(seed int64) sim.Stepper { return integrators.NewStochastic(seed) }

	return r
}

func (r *Registry) GetModel(name string, params map[string]float64) (opensys.Flow, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(params)
}

func (r *Registry) GetStepper(name string, seed int64) (sim.Stepper, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(seed), nil
}

func (r *Registry) StepperFactory(name string) (StepperFunc, error) {
	fn, ok := r.steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListSteppers() []string {
	names := make([]string, 0, len(r.steppers))
	for name := range r.steppers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are the observables attached to every epidemic run:
// population drift, positivity, and the infected peak.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewConservation(),
		metrics.NewNonNegativity(),
		metrics.NewPeakValue("peak_infected", 1),
	}
}
