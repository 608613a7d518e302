package compose

import (
	"math/rand"
	"testing"

	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/pattern"
)

func leakyBox(t *testing.T, gain float64) *opensys.Machine {
	t.Helper()
	m, err := opensys.NewMachine(1, []string{"u"}, []string{"y"},
		func(x opensys.State, in []float64, p opensys.Params, tt float64) opensys.State {
			return opensys.State{gain*in[0] - x[0]}
		},
		func(x opensys.State) []float64 { return []float64{x[0]} },
	)
	if err != nil {
		t.Fatalf("leaky box: %v", err)
	}
	return m
}

// Composing pattern P into system X and then using X as a box inside
// pattern Q must match flattening Q to contain P's boxes directly.
func TestDirectedHierarchicalClosure(t *testing.T) {
	a := leakyBox(t, 2)
	b := leakyBox(t, -1)

	// Inner: A wrapped with its ports re-exposed at the boundary.
	inner := pattern.NewWiringDiagram([]string{"u"}, []string{"y"})
	ia := inner.AddBox([]string{"u"}, []string{"y"})
	if err := inner.ConnectOuterInput("u", ia, "u"); err != nil {
		t.Fatalf("inner outer input: %v", err)
	}
	if err := inner.ConnectOuterOutput(ia, "y", "y"); err != nil {
		t.Fatalf("inner outer output: %v", err)
	}
	wrapped, err := Directed(inner, []*opensys.Machine{a})
	if err != nil {
		t.Fatalf("inner compose: %v", err)
	}

	// Outer: the wrapped composite and B in a feedback cycle.
	outer := pattern.NewWiringDiagram(nil, nil)
	ox := outer.AddBox([]string{"u"}, []string{"y"})
	ob := outer.AddBox([]string{"u"}, []string{"y"})
	if err := outer.AddWire(ox, "y", ob, "u"); err != nil {
		t.Fatalf("outer wire: %v", err)
	}
	if err := outer.AddWire(ob, "y", ox, "u"); err != nil {
		t.Fatalf("outer wire: %v", err)
	}
	nested, err := Directed(outer, []*opensys.Machine{wrapped, b})
	if err != nil {
		t.Fatalf("outer compose: %v", err)
	}

	// Flat: A and B wired directly.
	flatDiagram := pattern.NewWiringDiagram(nil, nil)
	fa := flatDiagram.AddBox([]string{"u"}, []string{"y"})
	fb := flatDiagram.AddBox([]string{"u"}, []string{"y"})
	if err := flatDiagram.AddWire(fa, "y", fb, "u"); err != nil {
		t.Fatalf("flat wire: %v", err)
	}
	if err := flatDiagram.AddWire(fb, "y", fa, "u"); err != nil {
		t.Fatalf("flat wire: %v", err)
	}
	flat, err := Directed(flatDiagram, []*opensys.Machine{a, b})
	if err != nil {
		t.Fatalf("flat compose: %v", err)
	}

	if nested.StateDim() != flat.StateDim() {
		t.Fatalf("state dims differ: %d vs %d", nested.StateDim(), flat.StateDim())
	}

	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 25; trial++ {
		x := opensys.State{rng.NormFloat64(), rng.NormFloat64()}

		want, err := flat.Eval(x, nil, nil, 0)
		if err != nil {
			t.Fatalf("flat eval: %v", err)
		}
		got, err := nested.Eval(x, nil, nil, 0)
		if err != nil {
			t.Fatalf("nested eval: %v", err)
		}
		for k := range want {
			if got[k] != want[k] {
				t.Errorf("trial %d component %d: nested %v, flat %v", trial, k, got[k], want[k])
			}
		}
	}
}

func TestUndirectedHierarchicalClosure(t *testing.T) {
	p := opensys.Params{"beta": 0.0005, "gamma": 0.25, "delta": 0.02}

	// Inner: infection + recovery composed over (S, I, R).
	inner, err := Undirected(sirRelation(t), []*opensys.Resource{infectionSharer(t), recoverySharer(t)})
	if err != nil {
		t.Fatalf("inner compose: %v", err)
	}

	// Outer: the inner composite reused as an arity-3 box, sharing S
	// and I with the vital-dynamics box.
	outer := pattern.NewRelation([]string{"S", "I", "R"})
	sir := outer.AddBox(3)
	vital := outer.AddBox(2)
	for _, bind := range []struct {
		box, arg int
		junction string
	}{
		{sir, 0, "S"}, {sir, 1, "I"}, {sir, 2, "R"},
		{vital, 0, "S"}, {vital, 1, "I"},
	} {
		if err := outer.BindArgument(bind.box, bind.arg, bind.junction); err != nil {
			t.Fatalf("bind %v: %v", bind, err)
		}
	}
	nested, err := Undirected(outer, []*opensys.Resource{inner, vitalSharer(t)})
	if err != nil {
		t.Fatalf("outer compose: %v", err)
	}

	// Flat: all three sharers in one relation.
	flatRelation := sirRelation(t)
	fv := flatRelation.AddBox(2)
	if err := flatRelation.BindArgument(fv, 0, "S"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := flatRelation.BindArgument(fv, 1, "I"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	flat, err := Undirected(flatRelation, []*opensys.Resource{infectionSharer(t), recoverySharer(t), vitalSharer(t)})
	if err != nil {
		t.Fatalf("flat compose: %v", err)
	}

	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 25; trial++ {
		x := opensys.State{rng.Float64() * 1000, rng.Float64() * 100, rng.Float64() * 100}

		want, err := flat.Derive(x, p, 0)
		if err != nil {
			t.Fatalf("flat derive: %v", err)
		}
		got, err := nested.Derive(x, p, 0)
		if err != nil {
			t.Fatalf("nested derive: %v", err)
		}
		for k := range want {
			if got[k] != want[k] {
				t.Errorf("trial %d junction %d: nested %v, flat %v", trial, k, got[k], want[k])
			}
		}
	}
}
