package pattern

import "errors"

var (
	// ErrUnknownBox indicates a box id that was never added.
	ErrUnknownBox = errors.New("pattern: unknown box")

	// ErrUnknownPort indicates a port name absent from the referenced
	// box or outer boundary.
	ErrUnknownPort = errors.New("pattern: unknown port")

	// ErrUnknownJunction indicates a junction name absent from the
	// relation.
	ErrUnknownJunction = errors.New("pattern: unknown junction")

	// ErrDuplicateInputWire indicates an input port that already has a
	// source. Directed inputs take exactly one wire; there is no
	// combination rule for merging two.
	ErrDuplicateInputWire = errors.New("pattern: input port already wired")

	// ErrArgumentRange indicates a box argument index at or beyond the
	// box's declared arity.
	ErrArgumentRange = errors.New("pattern: argument index out of range")
)
