package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/opendyn/internal/opensys"
)

const defaultMaxSteps = 10_000_000

type Simulator struct {
	flow      opensys.Flow
	stepper   Stepper
	metrics   []Metric
	observers []Observer
}

func New(flow opensys.Flow, stepper Stepper) *Simulator {
	return &Simulator{
		flow:      flow,
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 opensys.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.flow.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, flow expects %d",
			opensys.ErrDimensionMismatch, len(x0), s.flow.StateDim())
	}

	estimated := int(cfg.Duration/cfg.Dt) + 1
	result := &Result{
		Times:   make([]float64, 0, estimated),
		States:  make([]opensys.State, 0, estimated),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for step := 0; t < cfg.Duration-1e-12; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if step >= maxSteps {
			err := &NumericalError{Time: t, Step: step, Wrapped: ErrMaxSteps}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		stepDt := dt
		if t+stepDt > cfg.Duration {
			stepDt = cfg.Duration - t
		}

		var next opensys.State
		var stepErr error
		advanced := stepDt
		if cfg.Adaptive {
			next, advanced, dt, stepErr = s.adaptiveStep(x, t, stepDt, cfg)
		} else {
			next, stepErr = s.stepper.Step(s.flow, x, cfg.Params, t, stepDt)
		}
		if stepErr != nil {
			err := &NumericalError{Time: t, Step: step, Wrapped: stepErr}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		if cfg.ValidateState && !next.IsValid() {
			err := &NumericalError{Time: t, Step: step, Wrapped: ErrUnstable}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		x = next
		t += advanced
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	// The loop observes before stepping, so the final state still
	// needs its own pass.
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if cfg.MinDt < 0 || cfg.MaxDt < 0 {
		return fmt.Errorf("step bounds must be non-negative")
	}
	if cfg.MinDt > 0 && cfg.MaxDt > 0 && cfg.MinDt > cfg.MaxDt {
		return fmt.Errorf("min dt %f exceeds max dt %f", cfg.MinDt, cfg.MaxDt)
	}
	return nil
}

// adaptiveStep advances from t and returns the span actually covered
// together with the suggested size for the next step. Steppers with
// their own error estimate always cover dt and only tune the
// suggestion; anything else gets step doubling, where a rejection
// halves the span that was covered.
func (s *Simulator) adaptiveStep(x opensys.State, t, dt float64, cfg Config) (opensys.State, float64, float64, error) {
	if adaptive, ok := s.stepper.(AdaptiveStepper); ok {
		next, dtNext, err := adaptive.StepAdaptive(s.flow, x, cfg.Params, t, dt, cfg.Tolerance)
		if err != nil {
			return nil, 0, 0, err
		}
		if cfg.MinDt > 0 && dtNext < cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}
		if cfg.MaxDt > 0 && dtNext > cfg.MaxDt {
			dtNext = cfg.MaxDt
		}
		return next, dt, dtNext, nil
	}

	x1, err := s.stepper.Step(s.flow, x, cfg.Params, t, dt)
	if err != nil {
		return nil, 0, 0, err
	}
	xHalf, err := s.stepper.Step(s.flow, x, cfg.Params, t, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}
	x2, err := s.stepper.Step(s.flow, xHalf, cfg.Params, t+dt/2, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}

	estimate := x1.Sub(x2).Norm()

	if estimate > cfg.Tolerance {
		if cfg.MinDt > 0 && dt/2 < cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}
		return s.adaptiveStep(x, t, dt/2, cfg)
	}

	if estimate < cfg.Tolerance/10 {
		dtNext := dt * 2
		if cfg.MaxDt > 0 {
			dtNext = math.Min(dtNext, cfg.MaxDt)
		}
		return x2, dt, dtNext, nil
	}

	return x2, dt, dt, nil
}

// RunWithCallback streams states to the caller without recording a
// trajectory. The callback returns false to stop the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 opensys.State, cfg Config, callback func(x opensys.State, t float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	if len(x0) != s.flow.StateDim() {
		return fmt.Errorf("%w: initial state has %d components, flow expects %d",
			opensys.ErrDimensionMismatch, len(x0), s.flow.StateDim())
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	for t < cfg.Duration-1e-12 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		next, err := s.stepper.Step(s.flow, x, cfg.Params, t, dt)
		if err != nil {
			return &NumericalError{Time: t, Wrapped: err}
		}
		if cfg.ValidateState && !next.IsValid() {
			return &NumericalError{Time: t, Wrapped: ErrUnstable}
		}
		x = next
		t += dt
	}

	callback(x, t)
	return nil
}
