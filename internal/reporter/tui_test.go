package reporter

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func sizedModel() WatchModel {
	m := NewWatchModel("/tmp/script.applescript", nil)
	m.width = 80
	m.height = 24
	return m
}

func update(t *testing.T, m WatchModel, msg tea.Msg) WatchModel {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(WatchModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func TestWatchModel_Init(t *testing.T) {
	m := NewWatchModel("x", nil)
	if m.Init() == nil {
		t.Fatal("Init should return a tick command")
	}
}

func TestWatchModel_EmptyViewBeforeSize(t *testing.T) {
	m := NewWatchModel("x", nil)
	if m.View() != "" {
		t.Error("expected empty view before first WindowSizeMsg")
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "waiting for first run") {
		t.Errorf("unexpected view: %s", m.View())
	}
}

func TestWatchModel_RunLifecycle(t *testing.T) {
	m := sizedModel()

	m = update(t, m, RunStarted())
	if !m.running {
		t.Fatal("expected running after RunStarted")
	}
	if !strings.Contains(m.View(), "running") {
		t.Error("expected running status in view")
	}

	m = update(t, m, RunFinished(&Result{StartedAt: time.Now(), Output: "unicorn", Duration: 50 * time.Millisecond}))
	if m.running {
		t.Fatal("expected not running after RunFinished")
	}
	if m.runs != 1 {
		t.Errorf("runs: got %d, want 1", m.runs)
	}
	view := m.View()
	if !strings.Contains(view, "unicorn") || !strings.Contains(view, "ok in 50ms") {
		t.Errorf("unexpected view: %s", view)
	}

	m = update(t, m, RunFinished(&Result{StartedAt: time.Now(), Error: "exited with code 1"}))
	view = m.View()
	if !strings.Contains(view, "failed") || !strings.Contains(view, "exited with code 1") {
		t.Errorf("expected failure in view: %s", view)
	}
}

func TestWatchModel_HistoryCapped(t *testing.T) {
	m := sizedModel()
	for i := 0; i < historySize+5; i++ {
		m = update(t, m, RunFinished(&Result{StartedAt: time.Now(), Output: "x"}))
	}
	if len(m.history) != historySize {
		t.Errorf("history: got %d, want %d", len(m.history), historySize)
	}
	if m.runs != historySize+5 {
		t.Errorf("runs: got %d", m.runs)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if len(m.history) != 0 {
		t.Error("expected history cleared")
	}
}

func TestWatchModel_TimedOut(t *testing.T) {
	m := sizedModel()
	m = update(t, m, RunFinished(&Result{StartedAt: time.Now(), Error: "timed out", TimedOut: true}))
	if !strings.Contains(m.View(), "timed out after") {
		t.Errorf("expected timeout status: %s", m.View())
	}
}

func TestWatchModel_QuitCancels(t *testing.T) {
	cancelled := false
	m := NewWatchModel("x", func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("expected cancel on q")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestWatchModel_Tick(t *testing.T) {
	m := sizedModel()
	next, cmd := m.Update(tickMsg(time.Now()))
	if next.(WatchModel).frame != 1 {
		t.Error("tick should advance frame")
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestWatchModel_HistoryLineKeepsMultibyteIntact(t *testing.T) {
	m := sizedModel()
	res := &Result{StartedAt: time.Now(), Output: strings.Repeat("é", 80)}

	line := ansi.Strip(m.historyLine(res))
	if !utf8.ValidString(line) {
		t.Fatalf("history line split a character: %q", line)
	}
	if !strings.HasSuffix(line, strings.Repeat("é", historyWidth-3)+"...") {
		t.Errorf("unexpected truncation: %q", line)
	}

	short := ansi.Strip(m.historyLine(&Result{StartedAt: time.Now(), Output: "día"}))
	if !strings.HasSuffix(short, " día") {
		t.Errorf("short output should be untouched: %q", short)
	}
}
