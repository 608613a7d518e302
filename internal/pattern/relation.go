package pattern

import "fmt"

const unbound = -1

type relationBox struct {
	args []int
}

// Relation is an undirected connection pattern: named junctions, boxes
// whose argument slots alias junctions, and a subset of junctions
// exposed as outer variables.
type Relation struct {
	junctions []string
	index     map[string]int
	boxes     []relationBox
	outer     []int
}

// NewRelation creates a relation whose outer variables are pre-created
// as junctions, in order. Further junctions are created implicitly by
// BindArgument.
func NewRelation(outerVariables []string) *Relation {
	r := &Relation{index: make(map[string]int)}
	for _, name := range outerVariables {
		idx := r.junction(name)
		r.outer = append(r.outer, idx)
	}
	return r
}

// AddBox declares a box with the given arity and returns its id. All
// argument slots start unbound.
func (r *Relation) AddBox(arity int) int {
	args := make([]int, arity)
	for i := range args {
		args[i] = unbound
	}
	r.boxes = append(r.boxes, relationBox{args: args})
	return len(r.boxes) - 1
}

// BindArgument aliases a box argument slot to a junction, creating the
// junction on first use.
func (r *Relation) BindArgument(box, arg int, junction string) error {
	if box < 0 || box >= len(r.boxes) {
		return fmt.Errorf("%w: %d", ErrUnknownBox, box)
	}
	b := &r.boxes[box]
	if arg < 0 || arg >= len(b.args) {
		return fmt.Errorf("%w: box %d argument %d (arity %d)", ErrArgumentRange, box, arg, len(b.args))
	}
	b.args[arg] = r.junction(junction)
	return nil
}

func (r *Relation) junction(name string) int {
	if idx, ok := r.index[name]; ok {
		return idx
	}
	idx := len(r.junctions)
	r.junctions = append(r.junctions, name)
	r.index[name] = idx
	return idx
}

// JunctionIndex resolves a junction name to its state slot.
func (r *Relation) JunctionIndex(name string) (int, error) {
	idx, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownJunction, name)
	}
	return idx, nil
}

func (r *Relation) Junctions() []string { return cloneNames(r.junctions) }

func (r *Relation) OuterVariables() []string {
	names := make([]string, len(r.outer))
	for i, idx := range r.outer {
		names[i] = r.junctions[idx]
	}
	return names
}

func (r *Relation) BoxCount() int { return len(r.boxes) }

// BoxArity reports the declared arity of a box.
func (r *Relation) BoxArity(box int) int { return len(r.boxes[box].args) }

// BoxArguments reports the junction index bound to each argument slot;
// unbound slots are -1.
func (r *Relation) BoxArguments(box int) []int {
	args := make([]int, len(r.boxes[box].args))
	copy(args, r.boxes[box].args)
	return args
}
