package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/sim"
)

type Config struct {
	Model      string
	Integrator string
	InitState  []float64
	Dt         float64
	Duration   float64
	Tolerance  float64
	Adaptive   bool
	Seed       int64
	Params     map[string]float64
}

type Experiment struct {
	cfg       Config
	flow      opensys.Flow
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup resolves the configured model and stepper through the registry
// and attaches the default metrics.
func (e *Experiment) Setup(registry *Registry) error {
	flow, err := registry.GetModel(e.cfg.Model, e.cfg.Params)
	if err != nil {
		return err
	}
	stepper, err := registry.GetStepper(e.cfg.Integrator, e.cfg.Seed)
	if err != nil {
		return err
	}

	e.flow = flow
	e.simulator = sim.New(flow, stepper)
	for _, m := range registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not set up")
	}

	x0 := make(opensys.State, len(e.cfg.InitState))
	copy(x0, e.cfg.InitState)

	simCfg := sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Tolerance:     e.cfg.Tolerance,
		Adaptive:      e.cfg.Adaptive,
		Seed:          e.cfg.Seed,
		ValidateState: true,
		Params:        opensys.Params(e.cfg.Params),
	}

	return e.simulator.Run(ctx, x0, simCfg)
}

// Flow exposes the composed system, for labeling output columns.
func (e *Experiment) Flow() opensys.Flow { return e.flow }

// Simulator exposes the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// StateLabels returns the flow's component labels when it has them,
// falling back to x0..xN.
func (e *Experiment) StateLabels() []string {
	type labeled interface{ StateLabels() []string }
	if lf, ok := e.flow.(labeled); ok {
		if labels := lf.StateLabels(); len(labels) == e.flow.StateDim() {
			return labels
		}
	}
	labels := make([]string, e.flow.StateDim())
	for i := range labels {
		labels[i] = fmt.Sprintf("x%d", i)
	}
	return labels
}
