package reporter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/osarun/pkg/applescript"
)

func TestNewResult(t *testing.T) {
	res := NewResult("return 1", "buffered", "sync", []string{"osascript", "-e", "return 1"})
	if len(res.RunID) != 36 {
		t.Errorf("expected uuid run id, got %q", res.RunID)
	}
	other := NewResult("return 1", "buffered", "sync", nil)
	if res.RunID == other.RunID {
		t.Error("run ids must be unique")
	}
	if res.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
}

func TestResult_FinishSuccess(t *testing.T) {
	res := NewResult("return 1", "buffered", "sync", nil)
	res.Finish("1", nil)

	if res.Failed() {
		t.Fatal("unexpected failure")
	}
	if res.Output != "1" {
		t.Errorf("output: got %q", res.Output)
	}
	if res.Duration <= 0 {
		t.Error("duration not recorded")
	}
}

func TestResult_FinishExitError(t *testing.T) {
	res := NewResult("error", "streaming", "async", nil)
	res.Finish("", &applescript.ExitError{Code: 1, Stderr: "execution error"})

	if !res.Failed() {
		t.Fatal("expected failure")
	}
	if res.ExitCode != 1 {
		t.Errorf("exit code: got %d", res.ExitCode)
	}
	if !strings.Contains(res.Error, "execution error") {
		t.Errorf("error: got %q", res.Error)
	}

	timeout := NewResult("delay 5", "buffered", "sync", nil)
	timeout.Finish("", &applescript.ExitError{Code: -1, TimedOut: true})
	if !timeout.TimedOut {
		t.Error("expected TimedOut")
	}
}

func TestResult_FinishLaunchError(t *testing.T) {
	res := NewResult("return 1", "buffered", "sync", nil)
	res.Finish("", &exec.Error{Name: "osascript", Err: exec.ErrNotFound})

	if !res.Failed() || res.ExitCode != 0 {
		t.Errorf("launch failure should fail without exit code: %+v", res)
	}
}

func TestTextReporter_PrintResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, true)
	r.PrintResult(&Result{Output: "unicorn"})

	if buf.String() != "unicorn\n" {
		t.Errorf("result output must be unstyled, got %q", buf.String())
	}

	buf.Reset()
	r.PrintResult(&Result{})
	if buf.Len() != 0 {
		t.Errorf("empty output should print nothing, got %q", buf.String())
	}
}

func TestTextReporter_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)

	r.PrintSummary(&Result{StartedAt: time.Now(), Duration: 120 * time.Millisecond, Output: "one\ntwo"})
	out := buf.String()
	if !strings.Contains(out, "✓ 120ms") {
		t.Errorf("expected success marker, got: %s", out)
	}
	if !strings.Contains(out, "    one\n    two\n") {
		t.Errorf("expected indented output lines, got: %s", out)
	}

	buf.Reset()
	r.PrintSummary(&Result{StartedAt: time.Now(), Error: "boom"})
	if !strings.Contains(buf.String(), "✗") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected failure line, got: %s", buf.String())
	}
}

func TestTextReporter_PrintDryRun(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.PrintDryRun([]string{"osascript", "-ss", "-e", `return "unicorn"`, "it's"})

	want := `osascript -ss -e 'return "unicorn"' 'it'\''s'` + "\n"
	if buf.String() != want {
		t.Errorf("got %q\nwant %q", buf.String(), want)
	}
}

func TestTextReporter_PrintCheck(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextReporter(&buf, false)
	r.PrintCheck("platform", true, "darwin")
	r.PrintCheck("interpreter", false, "not found")

	out := buf.String()
	if !strings.Contains(out, "✓ platform") || !strings.Contains(out, "✗ interpreter") {
		t.Errorf("unexpected check output: %s", out)
	}
}

func TestNewTextReporter_NilWriter(t *testing.T) {
	r := NewTextReporter(nil, false)
	if r.w != os.Stdout {
		t.Error("nil writer should default to os.Stdout")
	}
}

func TestWriteJSON(t *testing.T) {
	res := NewResult("return 1", "buffered", "sync", []string{"osascript", "-e", "return 1"})
	res.Finish("1", nil)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["run_id"] != res.RunID || decoded["output"] != "1" {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
	if _, ok := decoded["error"]; ok {
		t.Error("error should be omitted on success")
	}
}

func TestWriteJSONReport(t *testing.T) {
	res := NewResult("return 1", "streaming", "async", nil)
	res.Finish("", errors.New("boom"))

	path := filepath.Join(t.TempDir(), "report.json")
	if err := WriteJSONReport(res, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Result
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Error != "boom" || got.Mode != "async" {
		t.Errorf("unexpected report: %+v", got)
	}
}

func TestWriteJSONReport_BadPath(t *testing.T) {
	err := WriteJSONReport(&Result{}, filepath.Join(t.TempDir(), "missing", "report.json"))
	if err == nil {
		t.Fatal("expected error writing to missing directory")
	}
}
