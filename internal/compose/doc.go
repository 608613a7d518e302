// Package compose turns a pattern plus a list of open systems into one
// composite open system.
//
// [Directed] substitutes wires: each box input is read from the unique
// readout feeding it (or from an outer input), and box derivatives are
// written into disjoint sub-ranges of the concatenated state. Because
// readouts are pure functions of state, wired cycles resolve in a
// single pass.
//
// [Undirected] sums resources: the composite holds one state slot per
// junction, and every box ADDS its contribution at the junctions its
// arguments alias.
//
// Composites are ordinary Machines and Resources, so patterns nest to
// any depth. All structural validation happens here, once; evaluation
// reuses the offset and source tables built at composition time.
package compose
