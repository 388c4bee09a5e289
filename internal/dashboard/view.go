package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odedash/internal/analysis"
)

const sliderWidth = 20

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.model.Name()))
	b.WriteString(dim.Render("  " + m.model.Description()))
	b.WriteString("\n\n")

	left := panel.Render(m.viewControls())
	right := m.viewPlots(max(20, m.width-lipgloss.Width(left)-4))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(keyHint.Render("↑/↓ select  ←/→ adjust  H/L ×10  enter edit  r reset  q quit"))
	return b.String()
}

// visibleRange keeps the cursor inside a window of the control list that
// fits the terminal.
func (m Model) visibleRange() (int, int) {
	n := m.rows()
	window := max(5, m.height-10)
	if n <= window {
		return 0, n
	}
	start := m.cursor - window/2
	start = max(0, min(start, n-window))
	return start, start + window
}

func (m Model) viewControls() string {
	var b strings.Builder
	start, end := m.visibleRange()
	if start > 0 {
		b.WriteString(dimmer.Render("  ↑ more") + "\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(m.viewRow(i))
		b.WriteString("\n")
	}
	if end < m.rows() {
		b.WriteString(dimmer.Render("  ↓ more") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewRow(i int) string {
	var label, value, bar string
	switch row := i - len(m.params); {
	case row < 0:
		p := m.params[i]
		label = p.Name
		value = fmt.Sprintf("%.4g", m.values[i])
		bar = slider(m.values[i], p.Min, p.Max)
	case row == rowTStop:
		label = "t_stop"
		value = fmt.Sprintf("%.4g", m.tStop)
	default:
		label = "height"
		value = fmt.Sprintf("%d", m.plotHeight)
	}

	if i == m.cursor && m.editing {
		value = yellow.Render(m.editBuf + "▏")
	}

	cursor := "  "
	name := white.Render(fmt.Sprintf("%-7s", label))
	if i == m.cursor {
		cursor = selected.Render("▸ ")
		name = selected.Render(fmt.Sprintf("%-7s", label))
	}
	return fmt.Sprintf("%s%s %s %s", cursor, name, cyan.Render(fmt.Sprintf("%-10s", value)), dim.Render(bar))
}

func slider(v, lo, hi float64) string {
	if hi <= lo {
		return ""
	}
	pos := int((v - lo) / (hi - lo) * float64(sliderWidth-1))
	pos = max(0, min(pos, sliderWidth-1))
	return strings.Repeat("─", pos) + "●" + strings.Repeat("─", sliderWidth-1-pos)
}

// plotRows converts the configured pixel height into terminal rows.
func (m Model) plotRows() int {
	return max(2, m.plotHeight/20)
}

func (m Model) viewPlots(width int) string {
	if m.traj == nil || m.traj.Len() < 2 {
		if m.running || m.traj == nil {
			return dim.Render("simulating…")
		}
		return dim.Render("no samples")
	}

	var b strings.Builder
	for _, name := range m.traj.Names {
		_, ys, err := analysis.Resample(m.traj, name, 0, width)
		if err != nil {
			continue
		}
		chart := asciigraph.Plot(ys,
			asciigraph.Height(m.plotRows()),
			asciigraph.Width(width-12),
			asciigraph.Caption(name))
		b.WriteString(chart)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) viewStatus() string {
	switch {
	case m.running:
		return yellow.Render("● running")
	case m.err != nil:
		return red.Render("✗ " + m.err.Error())
	case m.traj != nil:
		st := m.traj.Stats
		return green.Render("● done") + dim.Render(fmt.Sprintf(
			"  t=%.4g  samples=%d  rejected=%d  stiff=%d  switches=%d",
			m.traj.EndTime(), m.traj.Len(), st.Rejected, st.StiffSteps, st.MethodSwitches))
	}
	return ""
}
