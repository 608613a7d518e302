package sim

import (
	"context"
	"sync"

	"github.com/san-kum/opendyn/internal/opensys"
)

// StepperFactory builds a fresh stepper for one ensemble member.
// Stochastic steppers should seed from the argument so members
// decorrelate; deterministic steppers can ignore it.
type StepperFactory func(seed int64) Stepper

// Ensemble runs the same flow many times with per-member steppers and
// collects the individual trajectories.
type Ensemble struct {
	flow      opensys.Flow
	factory   StepperFactory
	numRuns   int
	seedStart int64
}

func NewEnsemble(flow opensys.Flow, factory StepperFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{flow: flow, factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, x0 opensys.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			runner := New(e.flow, e.factory(cfgCopy.Seed))
			results[idx], errs[idx] = runner.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
