package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// historySize is how many past runs the watch view keeps.
const historySize = 8

// historyWidth caps the summary shown for a past run, in terminal cells.
const historyWidth = 60

type tickMsg time.Time

type runStartedMsg struct{}

type runFinishedMsg struct{ res *Result }

// RunStarted tells the watch view that a run is in flight.
func RunStarted() tea.Msg { return runStartedMsg{} }

// RunFinished hands a completed run to the watch view.
func RunFinished(res *Result) tea.Msg { return runFinishedMsg{res: res} }

// WatchModel is the Bubbletea model for osarun watch.
type WatchModel struct {
	path   string
	cancel func() // called on 'q' to stop the watcher

	history []*Result // newest first
	runs    int
	running bool
	frame   int
	width   int
	height  int
}

// NewWatchModel creates a watch view for the given script path.
func NewWatchModel(path string, cancel func()) WatchModel {
	return WatchModel{path: path, cancel: cancel}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "c":
			m.history = nil
		}

	case runStartedMsg:
		m.running = true

	case runFinishedMsg:
		m.running = false
		m.runs++
		m.history = append([]*Result{msg.res}, m.history...)
		if len(m.history) > historySize {
			m.history = m.history[:historySize]
		}

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("osarun watch — %s", m.path)))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if len(m.history) > 0 {
		last := m.history[0]
		body := last.Output
		if last.Failed() {
			body = last.Error
		}
		if body == "" {
			body = dimStyle.Render("(no output)")
		}
		width := m.width - 4
		if width < 10 {
			width = 10
		}
		b.WriteString(outputStyle.Width(width).Render(body))
		b.WriteString("\n\n")

		for _, res := range m.history[1:] {
			b.WriteString(m.historyLine(res))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  c: clear history  q: quit"))

	return b.String()
}

func (m WatchModel) statusLine() string {
	switch {
	case m.running:
		spinner := spinnerChars[m.frame%len(spinnerChars)]
		return runStyle.Render(fmt.Sprintf("  %s running", spinner)) + dimStyle.Render(fmt.Sprintf("  (%d runs)", m.runs))
	case len(m.history) == 0:
		return dimStyle.Render("  waiting for first run")
	}

	last := m.history[0]
	dur := last.Duration.Round(time.Millisecond)
	runs := dimStyle.Render(fmt.Sprintf("  (%d runs)", m.runs))
	switch {
	case last.TimedOut:
		return warnStyle.Render(fmt.Sprintf("  ⏱ timed out after %s", dur)) + runs
	case last.Failed():
		return failedStyle.Render(fmt.Sprintf("  ✗ failed in %s", dur)) + runs
	default:
		return doneStyle.Render(fmt.Sprintf("  ✓ ok in %s", dur)) + runs
	}
}

func (m WatchModel) historyLine(res *Result) string {
	stamp := res.StartedAt.Format("15:04:05")
	summary := firstLine(res.Output)
	if res.Failed() {
		summary = firstLine(res.Error)
	}
	summary = ansi.Truncate(summary, historyWidth, "...")
	icon := doneStyle.Render("✓")
	if res.Failed() {
		icon = failedStyle.Render("✗")
	}
	return dimStyle.Render("  "+stamp+" ") + icon + dimStyle.Render(" "+summary)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
