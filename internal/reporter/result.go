package reporter

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/osarun/pkg/applescript"
)

// Result is the record of one osascript invocation as shown to the user.
type Result struct {
	RunID     string        `json:"run_id"`
	Script    string        `json:"script"`
	Argv      []string      `json:"argv,omitempty"`
	Strategy  string        `json:"strategy"`
	Mode      string        `json:"mode"` // sync or async
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Output    string        `json:"output"`
	Error     string        `json:"error,omitempty"`
	ExitCode  int           `json:"exit_code,omitempty"`
	TimedOut  bool          `json:"timed_out,omitempty"`
}

// NewResult starts a record with a fresh run ID and the current time.
func NewResult(script, strategy, mode string, argv []string) *Result {
	return &Result{
		RunID:     uuid.NewString(),
		Script:    script,
		Argv:      argv,
		Strategy:  strategy,
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

// Finish stores the outcome of the run.
func (r *Result) Finish(out string, err error) {
	r.Duration = time.Since(r.StartedAt)
	r.Output = out
	if err == nil {
		return
	}
	r.Error = err.Error()
	var ee *applescript.ExitError
	if errors.As(err, &ee) {
		r.ExitCode = ee.Code
		r.TimedOut = ee.TimedOut
	}
}

// Failed reports whether the run ended in an error.
func (r *Result) Failed() bool { return r.Error != "" }
