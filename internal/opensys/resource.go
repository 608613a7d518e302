package opensys

import "fmt"

// CheckedShared is the failure-aware form of an undirected vector field.
type CheckedShared func(x State, p Params, t float64) (State, error)

// Resource is an undirected open system: its dynamics are expressed
// directly over arity shared variables. A Resource is a closed Flow;
// sharing happens through composition, not through ports.
type Resource struct {
	arity    int
	labels   []string
	dynamics CheckedShared
}

// NewResource constructs a resource sharer from a user-supplied closure,
// guarded the same way as NewMachine.
func NewResource(arity int, dynamics SharedDynamicsFunc) (*Resource, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("%w: arity %d", ErrDimensionMismatch, arity)
	}
	if dynamics == nil {
		return nil, ErrNilDynamics
	}
	return &Resource{arity: arity, dynamics: guardShared(arity, dynamics)}, nil
}

// NewCompositeResource constructs a resource whose dynamics may fail;
// used by the undirected compositor.
func NewCompositeResource(arity int, dynamics CheckedShared) (*Resource, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("%w: arity %d", ErrDimensionMismatch, arity)
	}
	if dynamics == nil {
		return nil, ErrNilDynamics
	}
	return &Resource{arity: arity, dynamics: dynamics}, nil
}

func (r *Resource) Arity() int    { return r.arity }
func (r *Resource) StateDim() int { return r.arity }

func (r *Resource) StateLabels() []string { return cloneNames(r.labels) }

// WithStateLabels returns a copy carrying shared-variable labels.
func (r *Resource) WithStateLabels(labels []string) *Resource {
	c := *r
	c.labels = cloneNames(labels)
	return &c
}

// Derive computes the contribution of this resource at x.
func (r *Resource) Derive(x State, p Params, t float64) (State, error) {
	if len(x) != r.arity {
		return nil, &EvalError{Op: "dynamics", Time: t,
			Wrapped: fmt.Errorf("%w: state length %d, want %d", ErrDimensionMismatch, len(x), r.arity)}
	}
	return r.dynamics(x, p, t)
}

func guardShared(arity int, dynamics SharedDynamicsFunc) CheckedShared {
	return func(x State, p Params, t float64) (dx State, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				dx = nil
				err = &EvalError{Op: "dynamics", Time: t,
					Wrapped: fmt.Errorf("%w: %v", ErrRuntimeDimension, rec)}
			}
		}()
		dx = dynamics(x, p, t)
		if len(dx) != arity {
			return nil, &EvalError{Op: "dynamics", Time: t,
				Wrapped: fmt.Errorf("%w: derivative length %d, want %d", ErrRuntimeDimension, len(dx), arity)}
		}
		return dx, nil
	}
}
