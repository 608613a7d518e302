package integrators

import "github.com/san-kum/opendyn/internal/opensys"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f opensys.Flow, x opensys.State, p opensys.Params, t, dt float64) (opensys.State, error) {
	dx, err := f.Derive(x, p, t)
	if err != nil {
		return nil, err
	}
	result := make(opensys.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
