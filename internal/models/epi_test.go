package models

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/opendyn/internal/integrators"
	"github.com/san-kum/opendyn/internal/metrics"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/sim"
)

func TestDirectedSIRDerivative(t *testing.T) {
	m, err := DirectedSIR()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.StateDim() != 2 {
		t.Fatalf("state dim: got %d, want 2", m.StateDim())
	}

	p := opensys.Params{"beta": 0.0005, "gamma": 0.25}
	dx, err := m.Eval(opensys.State{990, 10}, nil, p, 0)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}

	wantDS := -0.0005 * 990 * 10
	wantDI := 0.0005*990*10 - 0.25*10
	if math.Abs(dx[0]-wantDS) > 1e-12 {
		t.Errorf("dS: got %v, want %v", dx[0], wantDS)
	}
	if math.Abs(dx[1]-wantDI) > 1e-12 {
		t.Errorf("dI: got %v, want %v", dx[1], wantDI)
	}
}

func TestSharedSIRMatchesDirected(t *testing.T) {
	directed, err := DirectedSIR()
	if err != nil {
		t.Fatalf("directed: %v", err)
	}
	shared, err := SIR()
	if err != nil {
		t.Fatalf("shared: %v", err)
	}

	p := DefaultParams()
	x := opensys.State{990, 10, 0}

	ddx, err := directed.Eval(opensys.State{x[0], x[1]}, nil, p, 0)
	if err != nil {
		t.Fatalf("directed eval: %v", err)
	}
	sdx, err := shared.Derive(x, p, 0)
	if err != nil {
		t.Fatalf("shared derive: %v", err)
	}

	if ddx[0] != sdx[0] || ddx[1] != sdx[1] {
		t.Errorf("formulations disagree: directed %v, shared %v", ddx, sdx[:2])
	}
}

func TestSIRVitalConservation(t *testing.T) {
	r, err := SIRVital()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	p := DefaultParams()
	for _, x := range []opensys.State{
		{990, 10, 0},
		{500, 300, 200},
		{0, 50, 950},
	} {
		dx, err := r.Derive(x, p, 0)
		if err != nil {
			t.Fatalf("derive %v: %v", x, err)
		}
		if total := dx.Sum(); math.Abs(total) > 1e-12 {
			t.Errorf("state %v: derivative sum %v, want 0", x, total)
		}
	}
}

func TestStagesShape(t *testing.T) {
	r, err := Stages(3)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if r.StateDim() != 5 {
		t.Errorf("state dim: got %d, want 5", r.StateDim())
	}
	want := []string{"S", "I1", "I2", "I3", "R"}
	labels := r.StateLabels()
	for i, l := range want {
		if labels[i] != l {
			t.Errorf("label %d: got %q, want %q", i, labels[i], l)
		}
	}
}

func TestStagesOneReducesToSIR(t *testing.T) {
	staged, err := Stages(1)
	if err != nil {
		t.Fatalf("staged: %v", err)
	}
	plain, err := SIR()
	if err != nil {
		t.Fatalf("plain: %v", err)
	}

	p := DefaultParams()
	x := opensys.State{990, 10, 0}

	sdx, err := staged.Derive(x, p, 0)
	if err != nil {
		t.Fatalf("staged derive: %v", err)
	}
	pdx, err := plain.Derive(x, p, 0)
	if err != nil {
		t.Fatalf("plain derive: %v", err)
	}

	for i := range pdx {
		if sdx[i] != pdx[i] {
			t.Errorf("component %d: staged %v, plain %v", i, sdx[i], pdx[i])
		}
	}
}

func TestStagesInvalidCount(t *testing.T) {
	if _, err := Stages(0); err == nil {
		t.Error("expected error for zero stages")
	}
	if _, err := Stages(-2); err == nil {
		t.Error("expected error for negative stages")
	}
}

func TestStagesIntegration(t *testing.T) {
	r, err := Stages(4)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Four serial stages with progression at 4*gamma, seeded entirely
	// in the first stage.
	p := opensys.Params{"beta": 0.0005, "gamma": 0.25, "delta": 1.0}
	x0 := opensys.State{990, 10, 0, 0, 0, 0}
	total0 := x0.Sum()

	conservation := metrics.NewConservation()
	nonneg := metrics.NewNonNegativity()

	runner := sim.New(r, integrators.NewRK4())
	runner.AddMetric(conservation)
	runner.AddMetric(nonneg)

	result, err := runner.Run(context.Background(), x0, sim.Config{
		Dt: 0.05, Duration: 60, Params: p, ValidateState: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if conservation.Value() > 1e-9 {
		t.Errorf("population drifted by %v", conservation.Value())
	}
	if nonneg.Value() != 1.0 {
		t.Errorf("negative compartment observed, score %v", nonneg.Value())
	}

	final := result.Final()
	if final.Sum() < total0-1e-6 || final.Sum() > total0+1e-6 {
		t.Errorf("final total %v, want %v", final.Sum(), total0)
	}

	// The outbreak should have burnt out: most of the population
	// recovered, almost nobody still infectious.
	infectious := final[1] + final[2] + final[3] + final[4]
	if infectious > 1.0 {
		t.Errorf("still %v infectious after 60 time units", infectious)
	}
	if final[5] < 900 {
		t.Errorf("only %v recovered", final[5])
	}
}
