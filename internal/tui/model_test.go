package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/pengelbrecht/calc/internal/history"
)

func enter(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestSubmitEvaluates(t *testing.T) {
	m := New(Options{Precision: -1})

	t.Run("infix expression", func(t *testing.T) {
		m = enter(t, m, "2 + 3")
		if m.Result() != 5 {
			t.Fatalf("Result() = %v, want 5", m.Result())
		}
		last := m.entries[len(m.entries)-1]
		if last.failed || last.output != "5" {
			t.Errorf("last entry = %+v", last)
		}
		if m.input.Value() != "" {
			t.Errorf("input not cleared: %q", m.input.Value())
		}
	})

	t.Run("ans operand", func(t *testing.T) {
		m = enter(t, m, "ans * 4")
		if m.Result() != 20 {
			t.Fatalf("Result() = %v, want 20", m.Result())
		}
	})

	t.Run("divide by zero keeps result", func(t *testing.T) {
		m = enter(t, m, "ans / 0")
		last := m.entries[len(m.entries)-1]
		if !last.failed || last.output != "cannot divide by zero" {
			t.Errorf("last entry = %+v", last)
		}
		if m.Result() != 20 {
			t.Errorf("Result() = %v, want 20", m.Result())
		}
	})

	t.Run("parse error", func(t *testing.T) {
		m = enter(t, m, "add 1")
		if last := m.entries[len(m.entries)-1]; !last.failed {
			t.Errorf("expected failed entry, got %+v", last)
		}
	})

	t.Run("clear resets", func(t *testing.T) {
		m = enter(t, m, "clear")
		if len(m.entries) != 0 || m.Result() != 0 {
			t.Errorf("clear left %d entries, result %v", len(m.entries), m.Result())
		}
	})

	t.Run("blank input is ignored", func(t *testing.T) {
		m = enter(t, m, "   ")
		if len(m.entries) != 0 {
			t.Errorf("blank input added %d entries", len(m.entries))
		}
	})
}

func TestSubmitRecordsHistory(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	m := New(Options{Precision: -1, Store: store})

	m = enter(t, m, "pow 2 3")
	m = enter(t, m, "1 / 0")

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	if entries[0].Result != 8 {
		t.Errorf("entries[0].Result = %v, want 8", entries[0].Result)
	}
	if entries[1].Error == "" {
		t.Error("expected entries[1] to record the error")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := New(Options{})
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("key %v: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %v: expected tea.QuitMsg", key)
		}
		if next.(Model).View() != "" {
			t.Errorf("key %v: expected empty view after quit", key)
		}
	}
}

func TestViewTruncatesToWidth(t *testing.T) {
	m := New(Options{Precision: -1})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	m = next.(Model)

	m = enter(t, m, "123456789 * 987654321")

	for _, line := range strings.Split(m.View(), "\n") {
		if w := ansi.StringWidth(line); w > 20 && strings.Contains(ansi.Strip(line), "=") {
			t.Errorf("line wider than 20 cells (%d): %q", w, ansi.Strip(line))
		}
	}
}

func TestViewShowsRecentEntries(t *testing.T) {
	m := New(Options{Precision: -1, Visible: 2})
	m = enter(t, m, "add 1 1")
	m = enter(t, m, "add 2 2")
	m = enter(t, m, "add 3 3")

	view := ansi.Strip(m.View())
	if strings.Contains(view, "1 + 1") {
		t.Errorf("oldest entry should be scrolled out:\n%s", view)
	}
	if !strings.Contains(view, "3 + 3 = 6") {
		t.Errorf("latest entry missing:\n%s", view)
	}
}
