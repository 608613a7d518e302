package report

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 72
	plotHeight = 16
)

// Trajectory renders one series per compartment, stacked vertically
// with subscripted legends.
func Trajectory(labels []string, states [][]float64, times []float64) string {
	if len(states) == 0 {
		return "(no data)"
	}

	dim := len(states[0])
	var b strings.Builder

	for j := 0; j < dim; j++ {
		series := make([]float64, len(states))
		for i := range states {
			series[i] = states[i][j]
		}

		label := fmt.Sprintf("x%d", j)
		if j < len(labels) && labels[j] != "" {
			label = labels[j]
		}

		caption := Subscript(label)
		if len(times) > 0 {
			caption = fmt.Sprintf("%s  (t = 0 .. %.4g)", caption, times[len(times)-1])
		}

		chart := asciigraph.Plot(series,
			asciigraph.Height(plotHeight/2),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(caption),
		)
		b.WriteString(GraphStyle.Render(chart))
		b.WriteString("\n")
	}

	return b.String()
}

// Compartment renders a single component.
func Compartment(label string, series []float64) string {
	if len(series) == 0 {
		return "(no data)"
	}
	chart := asciigraph.Plot(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(Subscript(label)),
	)
	return GraphStyle.Render(chart)
}

// Summary formats final metrics as aligned label/value lines.
func Summary(metrics map[string]float64, order []string) string {
	var b strings.Builder
	for _, name := range order {
		val, ok := metrics[name]
		if !ok {
			continue
		}
		b.WriteString(LabelStyle.Render(name))
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%.6g", val)))
		b.WriteString("\n")
	}
	return b.String()
}
