package compose

import "errors"

var (
	// ErrSystemCount indicates the systems list does not match the
	// pattern's box count.
	ErrSystemCount = errors.New("compose: system count does not match box count")

	// ErrPortCountMismatch indicates a box whose declared port counts
	// disagree with its assigned machine.
	ErrPortCountMismatch = errors.New("compose: port count mismatch")

	// ErrArityMismatch indicates a box whose declared arity disagrees
	// with its assigned resource.
	ErrArityMismatch = errors.New("compose: arity mismatch")

	// ErrUnconnectedPort indicates an input port with no incoming wire
	// or an unbound relation argument; evaluating it would read
	// undefined state.
	ErrUnconnectedPort = errors.New("compose: unconnected port")
)
