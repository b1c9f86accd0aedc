package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"weblint/internal/workspace"
)

// maxRows bounds the file list under the header.
const maxRows = 12

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	phaseStyles = map[workspace.Phase]lipgloss.Style{
		workspace.PhaseDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		workspace.PhaseCached:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Faint(true),
		workspace.PhaseFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		workspace.PhaseSkipped: lipgloss.NewStyle().Faint(true),
	}
	busyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type row struct {
	path     string
	phase    workspace.Phase
	problems int
	touched  int // порядок последнего обновления
}

type lintProgress struct {
	title    string
	events   <-chan workspace.Event
	spin     spinner.Model
	bar      progress.Model
	rows     []row
	byPath   map[string]int
	ticks    int
	finished int
	failed   int
	problems int
	width    int
	closed   bool
}

type (
	progressMsg workspace.Event
	closedMsg   struct{}
)

// NewProgressModel renders the progress of a lint run over files. It
// reads events until the channel is closed, then quits.
func NewProgressModel(title string, files []string, events <-chan workspace.Event) tea.Model {
	m := &lintProgress{
		title:  title,
		events: events,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(busyStyle)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:   make([]row, len(files)),
		byPath: make(map[string]int, len(files)),
		width:  80,
	}
	for i, f := range files {
		m.rows[i] = row{path: f}
		m.byPath[f] = i
	}
	return m
}

func (m *lintProgress) Init() tea.Cmd { return tea.Batch(m.spin.Tick, m.next()) }

func (m *lintProgress) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return progressMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *lintProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		return m, tea.Batch(m.apply(workspace.Event(msg)), m.next())
	case closedMsg:
		m.close()
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width, m.bar.Width = msg.Width, max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.closed {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply records ev and returns the command animating the bar. Events for
// unknown files and repeated final events are ignored.
func (m *lintProgress) apply(ev workspace.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok || m.rows[i].phase.Final() {
		return nil
	}
	m.ticks++
	r := &m.rows[i]
	r.phase, r.touched = ev.Phase, m.ticks
	if ev.Phase.Final() {
		m.finished++
		r.problems = ev.Diagnostics
		m.problems += ev.Diagnostics
		if ev.Phase == workspace.PhaseFailed {
			m.failed++
		}
	}
	return m.bar.SetPercent(m.percent())
}

func (m *lintProgress) percent() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.phase.Weight()
	}
	return sum / float64(len(m.rows))
}

// close marks files the run never reached.
func (m *lintProgress) close() {
	m.closed = true
	for i := range m.rows {
		if !m.rows[i].phase.Final() {
			m.rows[i].phase = workspace.PhaseSkipped
		}
	}
}

func (m *lintProgress) header() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d/%d", m.title, m.finished, len(m.rows))
	if m.problems > 0 {
		fmt.Fprintf(&sb, ", %d %s", m.problems, plural(m.problems, "problem", "problems"))
	}
	if m.failed > 0 {
		fmt.Fprintf(&sb, ", %d failed", m.failed)
	}
	return sb.String()
}

func (m *lintProgress) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var sb strings.Builder
	lead := m.spin.View()
	if m.closed {
		lead = "✓"
	}
	sb.WriteString(lead + " " + headerStyle.Render(m.header()) + "\n\n")

	pathWidth := max(m.width-18, 20)
	for _, r := range m.visible() {
		style, ok := phaseStyles[r.phase]
		if !ok {
			style = busyStyle
		}
		label := r.phase.String()
		if r.problems > 0 {
			label = fmt.Sprintf("%d!", r.problems)
		}
		fmt.Fprintf(&sb, "  %s %s\n", style.Render(fmt.Sprintf("%10s", label)), truncate(r.path, pathWidth))
	}
	sb.WriteByte('\n')
	if m.closed {
		sb.WriteString(m.bar.ViewAs(1))
	} else {
		sb.WriteString(m.bar.View())
	}
	sb.WriteByte('\n')
	return sb.String()
}

// visible lists busy files first, then the most recently finished.
func (m *lintProgress) visible() []row {
	if len(m.rows) <= maxRows {
		return m.rows
	}
	var busy, recent []row
	for _, r := range m.rows {
		switch {
		case r.phase == workspace.PhaseQueued:
		case r.phase.Final():
			recent = append(recent, r)
		default:
			busy = append(busy, r)
		}
	}
	out := busy[:min(len(busy), maxRows)]
	for len(out) < maxRows && len(recent) > 0 {
		best := 0
		for j := range recent {
			if recent[j].touched > recent[best].touched {
				best = j
			}
		}
		out = append(out, recent[best])
		recent = append(recent[:best], recent[best+1:]...)
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncate(s string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(s) <= width:
		return s
	case width <= 3:
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width-3, "...")
}
