// Package dashboard is the interactive terminal front end: one slider per
// model parameter, a horizon and plot-height control, and a plot per
// variable that is recomputed whenever an input changes.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/odedash/internal/config"
	"github.com/san-kum/odedash/internal/dynamo"
	"github.com/san-kum/odedash/internal/experiment"
	"github.com/san-kum/odedash/internal/sim"
)

// extra rows below the parameter sliders
const (
	rowTStop = iota
	rowPlotHeight
	numExtraRows
)

type Model struct {
	model  *dynamo.Model
	sim    *sim.Simulator
	params []dynamo.Parameter
	x0     dynamo.State

	values     []float64
	tStop      float64
	plotHeight int

	cursor  int
	editing bool
	editBuf string

	// runCtx belongs to request seq; changed cancels it before issuing
	// the next one.
	seq     int
	runCtx  context.Context
	cancel  context.CancelFunc
	running bool
	traj    *dynamo.Trajectory
	err     error

	width  int
	height int
}

// New starts from the experiment's parameters, horizon and plot height.
func New(exp *experiment.Experiment) Model {
	cfg := exp.Config()
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		runCtx:     ctx,
		cancel:     cancel,
		model:      exp.Model(),
		sim:        exp.Simulator(),
		params:     exp.Model().Parameters(),
		x0:         exp.InitialState(),
		values:     exp.Params().Values(),
		tStop:      cfg.TStop,
		plotHeight: cfg.PlotHeight,
		width:      100,
		height:     40,
	}
}

type simulatedMsg struct {
	seq  int
	traj *dynamo.Trajectory
	err  error
}

func (m Model) Init() tea.Cmd {
	return m.simulate()
}

// simulate snapshots the inputs so the command can run off the UI loop.
func (m Model) simulate() tea.Cmd {
	seq := m.seq
	ctx := m.runCtx
	values := append([]float64(nil), m.values...)
	tStop := m.tStop
	s := m.sim
	x0 := m.x0.Clone()
	return func() tea.Msg {
		tr, err := s.Run(ctx, sim.Request{TStop: tStop, Params: values, Initial: x0})
		return simulatedMsg{seq: seq, traj: tr, err: err}
	}
}

// changed marks the current result stale, cancels its simulation and
// requests a new one.
func (m Model) changed() (Model, tea.Cmd) {
	m.cancel()
	m.runCtx, m.cancel = context.WithCancel(context.Background())
	m.seq++
	m.running = true
	return m, m.simulate()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case simulatedMsg:
		// results of superseded requests are dropped
		if msg.seq != m.seq {
			return m, nil
		}
		m.running = false
		m.traj = msg.traj
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) rows() int { return len(m.params) + numExtraRows }

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case "pgup":
		m.cursor = max(0, m.cursor-10)
	case "pgdown":
		m.cursor = min(m.rows()-1, m.cursor+10)
	case "left", "h":
		return m.nudge(-1)
	case "right", "l":
		return m.nudge(1)
	case "H", "shift+left":
		return m.nudge(-10)
	case "L", "shift+right":
		return m.nudge(10)
	case "enter":
		m.editing = true
		m.editBuf = m.currentText()
	case "r":
		return m.reset()
	}
	return m, nil
}

func (m Model) editKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		v, err := strconv.ParseFloat(m.editBuf, 64)
		m.editBuf = ""
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return m, nil
		}
		return m.set(v)
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		for _, c := range msg.Runes {
			if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' || c == '+' {
				m.editBuf += string(c)
			}
		}
	}
	return m, nil
}

// nudge moves the selected control by n slider steps.
func (m Model) nudge(n int) (Model, tea.Cmd) {
	switch row := m.cursor - len(m.params); {
	case row < 0:
		p := m.params[m.cursor]
		return m.set(m.values[m.cursor] + float64(n)*p.Step())
	case row == rowTStop:
		return m.set(m.tStop * math.Pow(2, float64(n)/4))
	default:
		return m.set(float64(m.plotHeight + 10*n))
	}
}

// set assigns v to the selected control, clamped to its range. Only an
// actual change triggers a simulation.
func (m Model) set(v float64) (Model, tea.Cmd) {
	switch row := m.cursor - len(m.params); {
	case row < 0:
		v = m.params[m.cursor].Clamp(v)
		if v == m.values[m.cursor] {
			return m, nil
		}
		m.values = append([]float64(nil), m.values...)
		m.values[m.cursor] = v
		return m.changed()
	case row == rowTStop:
		v = math.Min(math.Max(v, config.MinTStop), config.MaxTStop)
		if v == m.tStop {
			return m, nil
		}
		m.tStop = v
		return m.changed()
	default:
		h := min(max(int(math.Round(v)), config.MinPlotHeight), config.MaxPlotHeight)
		m.plotHeight = h
		return m, nil
	}
}

// reset restores every parameter slider to its default. The horizon and
// plot height keep their values.
func (m Model) reset() (Model, tea.Cmd) {
	m.values = m.model.Defaults().Values()
	return m.changed()
}

func (m Model) currentText() string {
	switch row := m.cursor - len(m.params); {
	case row < 0:
		return strconv.FormatFloat(m.values[m.cursor], 'g', -1, 64)
	case row == rowTStop:
		return strconv.FormatFloat(m.tStop, 'g', -1, 64)
	default:
		return strconv.Itoa(m.plotHeight)
	}
}

// Values returns the current slider values in parameter order.
func (m Model) Values() []float64 { return append([]float64(nil), m.values...) }

func (m Model) TStop() float64 { return m.tStop }

func (m Model) PlotHeight() int { return m.plotHeight }

func (m Model) Trajectory() *dynamo.Trajectory { return m.traj }

func (m Model) Err() error { return m.err }

// Run opens the dashboard on the terminal until the user quits.
func Run(exp *experiment.Experiment) error {
	_, err := tea.NewProgram(New(exp), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
