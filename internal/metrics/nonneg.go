package metrics

import "github.com/san-kum/opendyn/internal/opensys"

// NonNegativity reports the fraction of observed states whose
// components all stayed at or above zero.
type NonNegativity struct {
	name       string
	violations int
	samples    int
}

func NewNonNegativity() *NonNegativity {
	return &NonNegativity{name: "non_negativity"}
}

func (n *NonNegativity) Name() string { return n.name }

func (n *NonNegativity) Observe(x opensys.State, t float64) {
	n.samples++
	for _, val := range x {
		if val < 0 {
			n.violations++
			break
		}
	}
}

func (n *NonNegativity) Value() float64 {
	if n.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(n.violations)/float64(n.samples)
}

func (n *NonNegativity) Reset() {
	n.violations = 0
	n.samples = 0
}
