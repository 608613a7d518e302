package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/report"
	"github.com/san-kum/opendyn/internal/sim"
)

const (
	historyCapacity = 600
	graphWidth      = 60
	graphHeight     = 6
	stepsPerFrame   = 4
)

type TickMsg time.Time

// Model steps a flow in real time and renders each compartment as a
// scrolling chart.
type Model struct {
	modelName string
	flow      opensys.Flow
	stepper   sim.Stepper
	params    opensys.Params
	labels    []string

	state   opensys.State
	initial opensys.State
	t, dt   float64
	fps     int

	running bool
	history [][]float64
	err     error
}

func NewModel(modelName string, flow opensys.Flow, stepper sim.Stepper, x0 opensys.State, params opensys.Params, labels []string, dt float64, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	history := make([][]float64, flow.StateDim())
	for i := range history {
		history[i] = make([]float64, 0, historyCapacity)
	}
	return Model{
		modelName: modelName,
		flow:      flow,
		stepper:   stepper,
		params:    params,
		labels:    labels,
		state:     x0.Clone(),
		initial:   x0.Clone(),
		dt:        dt,
		fps:       fps,
		running:   true,
		history:   history,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < stepsPerFrame; i++ {
		next, err := m.stepper.Step(m.flow, m.state, m.params, m.t, m.dt)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.state = next
		m.t += m.dt
	}

	for j := range m.history {
		m.history[j] = append(m.history[j], m.state[j])
		if len(m.history[j]) > historyCapacity {
			m.history[j] = m.history[j][1:]
		}
	}
}

func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.t = 0
	m.err = nil
	m.running = true
	for j := range m.history {
		m.history[j] = m.history[j][:0]
	}
}

func (m *Model) label(j int) string {
	if j < len(m.labels) && m.labels[j] != "" {
		return report.Subscript(m.labels[j])
	}
	return fmt.Sprintf("x%d", j)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(report.TitleStyle.Render(strings.ToUpper(m.modelName)))
	b.WriteString("\n")

	status := "RUNNING"
	if m.err != nil {
		status = report.WarnStyle.Render("FAILED: " + m.err.Error())
	} else if !m.running {
		status = "PAUSED"
	}
	b.WriteString(fmt.Sprintf("%s  t=%.2f\n\n", status, m.t))

	for j := range m.history {
		if len(m.history[j]) > 1 {
			chart := asciigraph.Plot(m.history[j],
				asciigraph.Height(graphHeight),
				asciigraph.Width(graphWidth),
				asciigraph.Caption(m.label(j)),
			)
			b.WriteString(report.GraphStyle.Render(chart))
			b.WriteString("\n")
		}
	}

	var values strings.Builder
	for j, v := range m.state {
		values.WriteString(fmt.Sprintf("%s=%.2f  ", m.label(j), v))
	}
	b.WriteString(report.LabelStyle.Render("State"))
	b.WriteString(report.ValueStyle.Render(values.String()))
	b.WriteString("\n")

	b.WriteString(report.HelpStyle.Render("space: pause   r: reset   q: quit"))

	return report.PanelStyle.Render(b.String())
}
