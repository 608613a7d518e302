package metrics

import (
	"math"

	"github.com/san-kum/opendyn/internal/opensys"
)

// PeakValue records the maximum a single component reaches and the
// time it got there. Useful for epidemic peaks.
type PeakValue struct {
	name      string
	component int
	peak      float64
	peakTime  float64
	samples   int
}

func NewPeakValue(name string, component int) *PeakValue {
	return &PeakValue{
		name:      name,
		component: component,
		peak:      math.Inf(-1),
	}
}

func (p *PeakValue) Name() string { return p.name }

func (p *PeakValue) Observe(x opensys.State, t float64) {
	if p.component >= len(x) {
		return
	}
	p.samples++
	if x[p.component] > p.peak {
		p.peak = x[p.component]
		p.peakTime = t
	}
}

func (p *PeakValue) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.peak
}

func (p *PeakValue) PeakTime() float64 { return p.peakTime }

func (p *PeakValue) Reset() {
	p.peak = math.Inf(-1)
	p.peakTime = 0
	p.samples = 0
}
