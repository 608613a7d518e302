// Package pattern declares connection topologies for open systems.
//
// A [WiringDiagram] is the directed discipline: boxes with named input
// and output ports, wires routing one box's output to another's input,
// and outer ports exposing the composite's own interface. A [Relation]
// is the undirected discipline: named junctions shared across box
// arguments, with a subset exposed as outer variables.
//
// Building a pattern is pure bookkeeping. Port and junction names are
// resolved to integer indices at construction time; the name tables are
// retained only for reporting. All topology errors are raised here,
// never during evaluation.
package pattern
