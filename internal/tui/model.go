// Package tui implements the interactive calculator REPL.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/pengelbrecht/calc/internal/batch"
	"github.com/pengelbrecht/calc/internal/calculator"
	"github.com/pengelbrecht/calc/internal/history"
	"github.com/pengelbrecht/calc/internal/styles"
)

const (
	defaultWidth = 80
	maxLines     = 200
)

// Options configures the REPL.
type Options struct {
	// Precision is the number of decimal places shown (-1 = shortest).
	Precision int
	// Store records every evaluation when non-nil.
	Store *history.Store
	// Visible is how many past lines are rendered (default 10).
	Visible int
}

type entry struct {
	input  string
	output string
	failed bool
}

// Model is the bubbletea model for the REPL.
type Model struct {
	input     textinput.Model
	calc      *calculator.Calculator
	store     *history.Store
	precision int
	visible   int
	entries   []entry
	width     int
	quitting  bool
}

// New creates a REPL model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Prompt = styles.PromptStyle.Render("› ")
	ti.Placeholder = "2 + 3, pow 2 10, ans * 4"
	ti.CharLimit = 128
	ti.Focus()

	visible := opts.Visible
	if visible <= 0 {
		visible = 10
	}

	return Model{
		input:     ti,
		calc:      calculator.New(),
		store:     opts.Store,
		precision: opts.Precision,
		visible:   visible,
		width:     defaultWidth,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	switch strings.ToLower(text) {
	case "":
		return m, nil
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit
	case "clear":
		m.entries = nil
		m.calc.Reset()
		return m, nil
	case "ans":
		m.push(entry{input: text, output: calculator.Format(m.calc.Result(), m.precision)})
		return m, nil
	}

	expr, err := batch.ParseLine(text, m.calc.Result())
	if err != nil {
		m.push(entry{input: text, output: err.Error(), failed: true})
		return m, nil
	}

	v, err := m.calc.Apply(expr.Op, expr.A, expr.B)
	if err != nil {
		m.push(entry{input: expr.String(), output: err.Error(), failed: true})
	} else {
		m.push(entry{input: expr.String(), output: calculator.Format(v, m.precision)})
	}

	if m.store != nil {
		if serr := m.store.Append(history.NewEntry(expr.Op, expr.A, expr.B, v, err)); serr != nil {
			m.push(entry{input: "history", output: serr.Error(), failed: true})
		}
	}
	return m, nil
}

func (m *Model) push(e entry) {
	m.entries = append(m.entries, e)
	if len(m.entries) > maxLines {
		m.entries = m.entries[len(m.entries)-maxLines:]
	}
}

// Result returns the last successful result.
func (m Model) Result() float64 {
	return m.calc.Result()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.RenderHeader("calc"))
	b.WriteString("\n\n")

	start := 0
	if len(m.entries) > m.visible {
		start = len(m.entries) - m.visible
	}
	for _, e := range m.entries[start:] {
		var out string
		if e.failed {
			out = styles.RenderError(e.output)
		} else {
			out = styles.RenderResult(e.output)
		}
		line := fmt.Sprintf("  %s %s %s", e.input, styles.RenderOp("="), out)
		b.WriteString(ansi.Truncate(line, m.width, "…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(styles.RenderDim("enter: evaluate · ans: last result · clear · esc: quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the REPL on the terminal.
func Run(opts Options) error {
	_, err := tea.NewProgram(New(opts)).Run()
	return err
}
