package integrators

import "github.com/san-kum/opendyn/internal/opensys"

type RK4 struct {
	scratch opensys.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make(opensys.State, n)
	}
}

func (r *RK4) Step(f opensys.Flow, x opensys.State, p opensys.Params, t, dt float64) (opensys.State, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := f.Derive(x, p, t)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f.Derive(r.scratch, p, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := f.Derive(r.scratch, p, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := f.Derive(r.scratch, p, t+dt)
	if err != nil {
		return nil, err
	}

	result := make(opensys.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}
