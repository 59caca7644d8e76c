package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables lipgloss styling.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// PrintResult writes the script output, unstyled, so it can be piped.
func (r *TextReporter) PrintResult(res *Result) {
	if res.Output == "" {
		return
	}
	fmt.Fprintln(r.w, res.Output)
}

// PrintSummary writes a one-line status for the run followed by its output.
func (r *TextReporter) PrintSummary(res *Result) {
	stamp := res.StartedAt.Format("15:04:05")
	dur := res.Duration.Round(time.Millisecond)

	if res.Failed() {
		fmt.Fprintf(r.w, "%s %s %s  %s\n", r.style(dimStyle, stamp), r.style(failedStyle, "✗"), dur, r.style(failedStyle, res.Error))
		return
	}
	fmt.Fprintf(r.w, "%s %s %s\n", r.style(dimStyle, stamp), r.style(doneStyle, "✓"), dur)
	if res.Output != "" {
		for _, line := range strings.Split(res.Output, "\n") {
			fmt.Fprintf(r.w, "    %s\n", line)
		}
	}
}

// PrintDryRun writes the argv that would be launched, one shell-quoted line.
func (r *TextReporter) PrintDryRun(argv []string) {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = quote(a)
	}
	fmt.Fprintln(r.w, strings.Join(quoted, " "))
}

// PrintCheck writes one doctor line.
func (r *TextReporter) PrintCheck(name string, ok bool, detail string) {
	icon := r.style(doneStyle, "✓")
	if !ok {
		icon = r.style(failedStyle, "✗")
	}
	fmt.Fprintf(r.w, "  %s %-14s %s\n", icon, name, r.style(dimStyle, detail))
}

func (r *TextReporter) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// quote single-quotes an argument for display when it needs it.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
