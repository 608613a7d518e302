package metrics

import (
	"math"

	"github.com/san-kum/opendyn/internal/opensys"
)

// Conservation tracks how far the state total drifts from its initial
// value over a run. Zero means the population stayed exactly conserved.
type Conservation struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewConservation() *Conservation {
	return &Conservation{name: "conservation_drift"}
}

func (c *Conservation) Name() string { return c.name }

func (c *Conservation) Observe(x opensys.State, t float64) {
	total := x.Sum()

	if c.samples == 0 {
		c.initial = total
	}
	c.samples++

	drift := math.Abs(total - c.initial)
	if c.initial != 0 {
		drift /= math.Abs(c.initial)
	}
	c.maxDrift = math.Max(c.maxDrift, drift)
}

func (c *Conservation) Value() float64 {
	return c.maxDrift
}

func (c *Conservation) Reset() {
	c.initial = 0
	c.maxDrift = 0
	c.samples = 0
}
