// Package opensys defines open dynamical systems: systems whose dynamics
// are declared against an explicit interface (named ports or shared
// variables) so they can be composed before being integrated.
//
// Two disciplines exist:
//
//   - [Machine]: a directed open system with named input and output
//     ports. Its readout is a pure function of its own state, which is
//     what lets wired feedback cycles resolve without iteration.
//   - [Resource]: an undirected open system exposing arity shared
//     variables. Composition sums resource contributions per shared
//     variable.
//
// Both are immutable once constructed. Integration consumes the [Flow]
// interface; a Resource is a Flow directly, a Machine becomes one via
// [Closed] or [Driven].
package opensys
