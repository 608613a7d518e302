package models

import (
	"fmt"

	"github.com/san-kum/opendyn/internal/compose"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/pattern"
)

// DefaultParams are the rates used by the presets: a slow-spreading
// infection in a population of about a thousand.
func DefaultParams() opensys.Params {
	return opensys.Params{
		"beta":  0.0005,
		"gamma": 0.25,
		"delta": 0.02,
	}
}

// SusceptibleMachine holds the susceptible count. It listens to the
// infected count on its input port and depletes at rate beta*S*I.
func SusceptibleMachine() (*opensys.Machine, error) {
	m, err := opensys.NewMachine(1, []string{"I"}, []string{"S"},
		func(x opensys.State, in []float64, p opensys.Params, t float64) opensys.State {
			return opensys.State{-p["beta"] * x[0] * in[0]}
		},
		func(x opensys.State) []float64 { return []float64{x[0]} },
	)
	if err != nil {
		return nil, err
	}
	return m.WithStateLabels([]string{"S"}), nil
}

// InfectedMachine holds the infected count. It grows from contact with
// the susceptible population on its input port and recovers at gamma.
func InfectedMachine() (*opensys.Machine, error) {
	m, err := opensys.NewMachine(1, []string{"S"}, []string{"I"},
		func(x opensys.State, in []float64, p opensys.Params, t float64) opensys.State {
			return opensys.State{p["beta"]*in[0]*x[0] - p["gamma"]*x[0]}
		},
		func(x opensys.State) []float64 { return []float64{x[0]} },
	)
	if err != nil {
		return nil, err
	}
	return m.WithStateLabels([]string{"I"}), nil
}

// DirectedSIR wires the susceptible and infected machines into a
// feedback cycle and closes it. State order is (S, I).
func DirectedSIR() (*opensys.Machine, error) {
	s, err := SusceptibleMachine()
	if err != nil {
		return nil, err
	}
	i, err := InfectedMachine()
	if err != nil {
		return nil, err
	}

	d := pattern.NewWiringDiagram(nil, nil)
	sBox := d.AddBox([]string{"I"}, []string{"S"})
	iBox := d.AddBox([]string{"S"}, []string{"I"})
	if err := d.AddWire(iBox, "I", sBox, "I"); err != nil {
		return nil, err
	}
	if err := d.AddWire(sBox, "S", iBox, "S"); err != nil {
		return nil, err
	}

	return compose.Directed(d, []*opensys.Machine{s, i})
}

// InfectionSharer moves population from its first variable to its
// second at rate beta*S*I.
func InfectionSharer() (*opensys.Resource, error) {
	return opensys.NewResource(2, func(x opensys.State, p opensys.Params, t float64) opensys.State {
		flow := p["beta"] * x[0] * x[1]
		return opensys.State{-flow, flow}
	})
}

// RecoverySharer moves population from its first variable to its
// second at rate gamma.
func RecoverySharer() (*opensys.Resource, error) {
	return opensys.NewResource(2, func(x opensys.State, p opensys.Params, t float64) opensys.State {
		flow := p["gamma"] * x[0]
		return opensys.State{-flow, flow}
	})
}

// VitalSharer balances infected deaths with susceptible births at rate
// delta, keeping the total population constant.
func VitalSharer() (*opensys.Resource, error) {
	return opensys.NewResource(2, func(x opensys.State, p opensys.Params, t float64) opensys.State {
		flow := p["delta"] * x[1]
		return opensys.State{flow, -flow}
	})
}

// SIR composes infection and recovery sharers over junctions (S, I, R).
func SIR() (*opensys.Resource, error) {
	return sharedSIR(false)
}

// SIRVital is SIR with balanced vital dynamics on (S, I).
func SIRVital() (*opensys.Resource, error) {
	return sharedSIR(true)
}

func sharedSIR(vital bool) (*opensys.Resource, error) {
	infection, err := InfectionSharer()
	if err != nil {
		return nil, err
	}
	recovery, err := RecoverySharer()
	if err != nil {
		return nil, err
	}

	type bind struct {
		box, arg int
		junction string
	}

	r := pattern.NewRelation([]string{"S", "I", "R"})
	iBox := r.AddBox(2)
	rBox := r.AddBox(2)
	binds := []bind{
		{iBox, 0, "S"}, {iBox, 1, "I"},
		{rBox, 0, "I"}, {rBox, 1, "R"},
	}
	systems := []*opensys.Resource{infection, recovery}

	if vital {
		v, err := VitalSharer()
		if err != nil {
			return nil, err
		}
		vBox := r.AddBox(2)
		binds = append(binds, bind{vBox, 0, "S"}, bind{vBox, 1, "I"})
		systems = append(systems, v)
	}

	for _, b := range binds {
		if err := r.BindArgument(b.box, b.arg, b.junction); err != nil {
			return nil, err
		}
	}

	return compose.Undirected(r, systems)
}

// Stages builds a staged-infection model with n infectious compartments
// I1..In between S and R. Infection depletes S in proportion to the sum
// of all infectious stages and feeds I1; each stage progresses to the
// next at rate delta; the last stage recovers at gamma. Junction order
// is (S, I1, ..., In, R).
func Stages(n int) (*opensys.Resource, error) {
	if n < 1 {
		return nil, fmt.Errorf("stage count must be at least 1, got %d", n)
	}

	junctions := make([]string, 0, n+2)
	junctions = append(junctions, "S")
	for j := 1; j <= n; j++ {
		junctions = append(junctions, fmt.Sprintf("I%d", j))
	}
	junctions = append(junctions, "R")

	// Infection spans S and every infectious stage: the force of
	// infection sums them all, but only the first stage is credited.
	infection, err := opensys.NewResource(n+1, func(x opensys.State, p opensys.Params, t float64) opensys.State {
		sum := 0.0
		for j := 1; j <= n; j++ {
			sum += x[j]
		}
		flow := p["beta"] * x[0] * sum
		dx := make(opensys.State, n+1)
		dx[0] = -flow
		dx[1] = flow
		return dx
	})
	if err != nil {
		return nil, err
	}

	r := pattern.NewRelation(junctions)
	systems := []*opensys.Resource{infection}

	iBox := r.AddBox(n + 1)
	if err := r.BindArgument(iBox, 0, "S"); err != nil {
		return nil, err
	}
	for j := 1; j <= n; j++ {
		if err := r.BindArgument(iBox, j, fmt.Sprintf("I%d", j)); err != nil {
			return nil, err
		}
	}

	for j := 1; j < n; j++ {
		progression, err := opensys.NewResource(2, func(x opensys.State, p opensys.Params, t float64) opensys.State {
			flow := p["delta"] * x[0]
			return opensys.State{-flow, flow}
		})
		if err != nil {
			return nil, err
		}
		box := r.AddBox(2)
		if err := r.BindArgument(box, 0, fmt.Sprintf("I%d", j)); err != nil {
			return nil, err
		}
		if err := r.BindArgument(box, 1, fmt.Sprintf("I%d", j+1)); err != nil {
			return nil, err
		}
		systems = append(systems, progression)
	}

	recovery, err := RecoverySharer()
	if err != nil {
		return nil, err
	}
	rBox := r.AddBox(2)
	if err := r.BindArgument(rBox, 0, fmt.Sprintf("I%d", n)); err != nil {
		return nil, err
	}
	if err := r.BindArgument(rBox, 1, "R"); err != nil {
		return nil, err
	}
	systems = append(systems, recovery)

	return compose.Undirected(r, systems)
}
