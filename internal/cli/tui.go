package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/regalloc/pkg/problem"
)

// Trace styles
var (
	traceCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	traceDoneStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	traceDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	traceFailStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// TraceModel - Interactive trace stepper
// =============================================================================

// TraceModel is the bubbletea model that steps through an allocation trace.
// Step is the number of events applied so far.
type TraceModel struct {
	Events []problem.TraceEvent
	Step   int
	Height int
	Offset int
}

// NewTraceModel creates a trace stepper positioned before the first event.
func NewTraceModel(events []problem.TraceEvent) TraceModel {
	return TraceModel{Events: events, Height: 15}
}

func (m TraceModel) Init() tea.Cmd {
	return nil
}

func (m TraceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ":
			if m.Step < len(m.Events) {
				m.Step++
			}
		case "left", "h", "p":
			if m.Step > 0 {
				m.Step--
			}
		case "home", "g":
			m.Step = 0
		case "end", "G":
			m.Step = len(m.Events)
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

// scroll keeps the current event inside the visible window.
func (m *TraceModel) scroll() {
	cur := m.Step - 1
	if cur < m.Offset {
		m.Offset = max(cur, 0)
	}
	if cur >= m.Offset+m.Height {
		m.Offset = cur - m.Height + 1
	}
}

func (m TraceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Allocation Trace"))
	b.WriteString("\n")
	b.WriteString(traceDimStyle.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Events))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Step-1 {
			cursor = "▸ "
		}
		rows = append(rows, eventRow(cursor, i, m.Events[i]))
	}

	t := newTable([]string{"", "#", "Kind", "Node", "Register"}, rows, func(row, _ int) lipgloss.Style {
		i := m.Offset + row
		switch {
		case i >= len(m.Events) || i >= m.Step:
			return traceDimStyle
		case i == m.Step-1:
			return traceCurrentStyle
		case m.Events[i].Kind == "fail":
			return traceFailStyle
		}
		return traceDoneStyle
	})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	state := replayTrace(m.Events[:m.Step])
	b.WriteString(printableState(state))
	b.WriteString("\n")
	b.WriteString(traceDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Step, len(m.Events))))

	return b.String()
}

func eventRow(cursor string, i int, e problem.TraceEvent) []string {
	reg := e.Reg
	if reg == "" {
		reg = "-"
	}
	return []string{cursor, strconv.Itoa(i + 1), e.Kind, e.Node, reg}
}

// =============================================================================
// Trace Replay
// =============================================================================

// traceState is the allocator state after a prefix of the trace.
type traceState struct {
	Stack    []string // bottom first
	Assigned []string // "node=reg" in assignment order
	Failed   []string
}

// replayTrace rebuilds the stack and assignments from events. Pushes come
// from simplify and optimistic events; select pops the top of the stack for
// each assign or fail event.
func replayTrace(events []problem.TraceEvent) traceState {
	var s traceState
	for _, e := range events {
		switch e.Kind {
		case "simplify", "optimistic":
			s.Stack = append(s.Stack, e.Node)
		case "assign", "fail":
			if n := len(s.Stack); n > 0 && s.Stack[n-1] == e.Node {
				s.Stack = s.Stack[:n-1]
			}
			if e.Kind == "assign" {
				s.Assigned = append(s.Assigned, e.Node+"="+e.Reg)
			} else {
				s.Failed = append(s.Failed, e.Node)
			}
		}
	}
	return s
}

func printableState(s traceState) string {
	var b strings.Builder
	line := func(label string, items []string, style lipgloss.Style) {
		value := "-"
		if len(items) > 0 {
			value = strings.Join(items, " ")
		}
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(10).Render(label))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}
	line("stack", s.Stack, StyleValue)
	line("assigned", s.Assigned, StyleHighlight)
	line("failed", s.Failed, traceFailStyle)
	return b.String()
}
