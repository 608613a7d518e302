package compose

import (
	"fmt"

	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/pattern"
)

// Directed composes a wiring diagram with one machine per box, in box
// order, into a single machine. The composite state is the
// concatenation of box states; the offset table addressing each box's
// sub-range is built once here and reused on every evaluation.
func Directed(d *pattern.WiringDiagram, systems []*opensys.Machine) (*opensys.Machine, error) {
	n := d.BoxCount()
	if len(systems) != n {
		return nil, fmt.Errorf("%w: %d systems for %d boxes", ErrSystemCount, len(systems), n)
	}

	offsets := make([]int, n)
	dims := make([]int, n)
	total := 0
	for i, sys := range systems {
		if len(sys.Inputs()) != len(d.BoxInputs(i)) || len(sys.Outputs()) != len(d.BoxOutputs(i)) {
			return nil, fmt.Errorf("%w: box %d declares %d in/%d out, system has %d in/%d out",
				ErrPortCountMismatch, i,
				len(d.BoxInputs(i)), len(d.BoxOutputs(i)),
				len(sys.Inputs()), len(sys.Outputs()))
		}
		offsets[i] = total
		dims[i] = sys.StateDim()
		total += dims[i]
	}

	// Every box input must have exactly one recorded source: a wire or
	// an outer input. Uniqueness was enforced at pattern construction.
	inputSrc := make([][]pattern.PortRef, n)
	for i := range systems {
		ports := d.BoxInputs(i)
		inputSrc[i] = make([]pattern.PortRef, len(ports))
		for k, name := range ports {
			src, ok := d.Source(pattern.PortRef{Box: i, Port: k})
			if !ok {
				return nil, fmt.Errorf("%w: box %d input %q", ErrUnconnectedPort, i, name)
			}
			inputSrc[i][k] = src
		}
	}

	outerOut := d.OuterOutputs()
	outSrc := make([]pattern.PortRef, len(outerOut))
	for j, name := range outerOut {
		src, ok := d.Source(pattern.PortRef{Box: pattern.Outer, Port: j})
		if !ok {
			return nil, fmt.Errorf("%w: outer output %q", ErrUnconnectedPort, name)
		}
		outSrc[j] = src
	}

	boxes := make([]*opensys.Machine, n)
	copy(boxes, systems)

	sub := func(x opensys.State, i int) opensys.State {
		return x[offsets[i] : offsets[i]+dims[i]]
	}

	dynamics := func(x opensys.State, in []float64, p opensys.Params, t float64) (opensys.State, error) {
		// Readouts are evaluated at most once per box per call.
		outs := make([][]float64, n)
		readout := func(b int) ([]float64, error) {
			if outs[b] == nil {
				o, err := boxes[b].Output(sub(x, b))
				if err != nil {
					return nil, fmt.Errorf("box %d: %w", b, err)
				}
				outs[b] = o
			}
			return outs[b], nil
		}

		deriv := make(opensys.State, total)
		for i, sys := range boxes {
			ins := make([]float64, len(inputSrc[i]))
			for k, src := range inputSrc[i] {
				if src.Box == pattern.Outer {
					ins[k] = in[src.Port]
					continue
				}
				o, err := readout(src.Box)
				if err != nil {
					return nil, err
				}
				ins[k] = o[src.Port]
			}
			dx, err := sys.Eval(sub(x, i), ins, p, t)
			if err != nil {
				return nil, fmt.Errorf("box %d: %w", i, err)
			}
			copy(deriv[offsets[i]:offsets[i]+dims[i]], dx)
		}
		return deriv, nil
	}

	var readout opensys.CheckedReadout
	if len(outerOut) > 0 {
		readout = func(x opensys.State) ([]float64, error) {
			out := make([]float64, len(outSrc))
			for j, src := range outSrc {
				o, err := boxes[src.Box].Output(sub(x, src.Box))
				if err != nil {
					return nil, fmt.Errorf("box %d: %w", src.Box, err)
				}
				out[j] = o[src.Port]
			}
			return out, nil
		}
	}

	composite, err := opensys.NewCompositeMachine(total, d.OuterInputs(), outerOut, dynamics, readout)
	if err != nil {
		return nil, err
	}
	return composite.WithStateLabels(machineLabels(boxes, total)), nil
}

func machineLabels(boxes []*opensys.Machine, total int) []string {
	labels := make([]string, 0, total)
	for i, sys := range boxes {
		labels = append(labels, boxLabels(sys.StateLabels(), sys.StateDim(), i)...)
	}
	return dedupeLabels(labels)
}

func boxLabels(labels []string, dim, box int) []string {
	out := make([]string, dim)
	for j := 0; j < dim; j++ {
		if j < len(labels) && labels[j] != "" {
			out[j] = labels[j]
		} else {
			out[j] = fmt.Sprintf("b%d.x%d", box, j)
		}
	}
	return out
}

// dedupeLabels qualifies colliding labels with their slot index so the
// reporting collaborator always gets distinct names.
func dedupeLabels(labels []string) []string {
	seen := make(map[string]int, len(labels))
	for _, l := range labels {
		seen[l]++
	}
	for i, l := range labels {
		if seen[l] > 1 {
			labels[i] = fmt.Sprintf("%s[%d]", l, i)
		}
	}
	return labels
}
