package pattern

import "fmt"

// Outer is the pseudo box id of the pattern's own boundary in a PortRef.
const Outer = -1

// PortRef identifies one port by box id and port index. Box == Outer
// refers to the pattern boundary (outer inputs when used as a source,
// outer outputs when used as a target).
type PortRef struct {
	Box  int
	Port int
}

type wiringBox struct {
	inputs  []string
	outputs []string
}

// WiringDiagram is a directed connection pattern: boxes with named
// ports, wires keyed by their target input port, and outer ports.
type WiringDiagram struct {
	outerIn  []string
	outerOut []string
	boxes    []wiringBox
	sources  map[PortRef]PortRef
}

func NewWiringDiagram(outerInputs, outerOutputs []string) *WiringDiagram {
	return &WiringDiagram{
		outerIn:  cloneNames(outerInputs),
		outerOut: cloneNames(outerOutputs),
		sources:  make(map[PortRef]PortRef),
	}
}

// AddBox declares a box with the given input and output port names and
// returns its id.
func (d *WiringDiagram) AddBox(inputs, outputs []string) int {
	d.boxes = append(d.boxes, wiringBox{
		inputs:  cloneNames(inputs),
		outputs: cloneNames(outputs),
	})
	return len(d.boxes) - 1
}

// AddWire routes srcBox's output port to dstBox's input port. Each input
// port accepts exactly one incoming wire.
func (d *WiringDiagram) AddWire(srcBox int, srcPort string, dstBox int, dstPort string) error {
	src, err := d.resolveOutput(srcBox, srcPort)
	if err != nil {
		return err
	}
	dst, err := d.resolveInput(dstBox, dstPort)
	if err != nil {
		return err
	}
	return d.setSource(dst, src)
}

// ConnectOuterInput routes one of the pattern's own input ports to a
// box input port.
func (d *WiringDiagram) ConnectOuterInput(outerPort string, dstBox int, dstPort string) error {
	idx := nameIndex(d.outerIn, outerPort)
	if idx < 0 {
		return fmt.Errorf("%w: outer input %q", ErrUnknownPort, outerPort)
	}
	dst, err := d.resolveInput(dstBox, dstPort)
	if err != nil {
		return err
	}
	return d.setSource(dst, PortRef{Box: Outer, Port: idx})
}

// ConnectOuterOutput routes a box output port to one of the pattern's
// own output ports.
func (d *WiringDiagram) ConnectOuterOutput(srcBox int, srcPort string, outerPort string) error {
	src, err := d.resolveOutput(srcBox, srcPort)
	if err != nil {
		return err
	}
	idx := nameIndex(d.outerOut, outerPort)
	if idx < 0 {
		return fmt.Errorf("%w: outer output %q", ErrUnknownPort, outerPort)
	}
	return d.setSource(PortRef{Box: Outer, Port: idx}, src)
}

func (d *WiringDiagram) setSource(dst, src PortRef) error {
	if _, ok := d.sources[dst]; ok {
		return fmt.Errorf("%w: target %v", ErrDuplicateInputWire, dst)
	}
	d.sources[dst] = src
	return nil
}

func (d *WiringDiagram) resolveInput(box int, port string) (PortRef, error) {
	if box < 0 || box >= len(d.boxes) {
		return PortRef{}, fmt.Errorf("%w: %d", ErrUnknownBox, box)
	}
	idx := nameIndex(d.boxes[box].inputs, port)
	if idx < 0 {
		return PortRef{}, fmt.Errorf("%w: box %d input %q", ErrUnknownPort, box, port)
	}
	return PortRef{Box: box, Port: idx}, nil
}

func (d *WiringDiagram) resolveOutput(box int, port string) (PortRef, error) {
	if box < 0 || box >= len(d.boxes) {
		return PortRef{}, fmt.Errorf("%w: %d", ErrUnknownBox, box)
	}
	idx := nameIndex(d.boxes[box].outputs, port)
	if idx < 0 {
		return PortRef{}, fmt.Errorf("%w: box %d output %q", ErrUnknownPort, box, port)
	}
	return PortRef{Box: box, Port: idx}, nil
}

func (d *WiringDiagram) BoxCount() int { return len(d.boxes) }

func (d *WiringDiagram) BoxInputs(box int) []string {
	return cloneNames(d.boxes[box].inputs)
}

func (d *WiringDiagram) BoxOutputs(box int) []string {
	return cloneNames(d.boxes[box].outputs)
}

func (d *WiringDiagram) OuterInputs() []string  { return cloneNames(d.outerIn) }
func (d *WiringDiagram) OuterOutputs() []string { return cloneNames(d.outerOut) }

// Source reports the recorded source for a target port, if any.
func (d *WiringDiagram) Source(target PortRef) (PortRef, bool) {
	src, ok := d.sources[target]
	return src, ok
}

func nameIndex(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func cloneNames(names []string) []string {
	if names == nil {
		return nil
	}
	c := make([]string, len(names))
	copy(c, names)
	return c
}
