package integrators

import (
	"math"
	"math/rand"

	"github.com/san-kum/opendyn/internal/opensys"
)

// Stochastic performs an Euler step with demographic noise: each
// component gains a fluctuation proportional to the square root of its
// drift magnitude. Components are clamped at zero so populations never
// go negative.
type Stochastic struct {
	rng *rand.Rand
}

func NewStochastic(seed int64) *Stochastic {
	return &Stochastic{rng: rand.New(rand.NewSource(seed))}
}

func (s *Stochastic) Step(f opensys.Flow, x opensys.State, p opensys.Params, t, dt float64) (opensys.State, error) {
	dx, err := f.Derive(x, p, t)
	if err != nil {
		return nil, err
	}
	result := make(opensys.State, len(x))
	for i := range x {
		flow := dt * dx[i]
		noise := math.Sqrt(math.Abs(flow)) * s.rng.NormFloat64()
		result[i] = x[i] + flow + noise
		if result[i] < 0 {
			result[i] = 0
		}
	}
	return result, nil
}
