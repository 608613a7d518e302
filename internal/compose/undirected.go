package compose

import (
	"fmt"

	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/pattern"
)

// Undirected composes a relation with one resource per box, in box
// order, into a single resource. The composite holds one state slot per
// junction; each box reads its local view through its argument-junction
// bindings and its contribution is ADDED into the bound junction slots.
// A junction shared by k boxes therefore accumulates the sum of all k
// contributions.
func Undirected(r *pattern.Relation, systems []*opensys.Resource) (*opensys.Resource, error) {
	n := r.BoxCount()
	if len(systems) != n {
		return nil, fmt.Errorf("%w: %d systems for %d boxes", ErrSystemCount, len(systems), n)
	}

	args := make([][]int, n)
	for i, sys := range systems {
		if sys.Arity() != r.BoxArity(i) {
			return nil, fmt.Errorf("%w: box %d declares arity %d, system has arity %d",
				ErrArityMismatch, i, r.BoxArity(i), sys.Arity())
		}
		args[i] = r.BoxArguments(i)
		for k, j := range args[i] {
			if j < 0 {
				return nil, fmt.Errorf("%w: box %d argument %d unbound", ErrUnconnectedPort, i, k)
			}
		}
	}

	junctions := r.Junctions()
	total := len(junctions)

	boxes := make([]*opensys.Resource, n)
	copy(boxes, systems)

	dynamics := func(x opensys.State, p opensys.Params, t float64) (opensys.State, error) {
		deriv := make(opensys.State, total)
		for i, sys := range boxes {
			local := make(opensys.State, len(args[i]))
			for k, j := range args[i] {
				local[k] = x[j]
			}
			dx, err := sys.Derive(local, p, t)
			if err != nil {
				return nil, fmt.Errorf("box %d: %w", i, err)
			}
			for k, j := range args[i] {
				deriv[j] += dx[k]
			}
		}
		return deriv, nil
	}

	composite, err := opensys.NewCompositeResource(total, dynamics)
	if err != nil {
		return nil, err
	}
	return composite.WithStateLabels(junctions), nil
}
