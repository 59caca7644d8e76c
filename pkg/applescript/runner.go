package applescript

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

const (
	// DefaultInterpreter is resolved through PATH.
	DefaultInterpreter = "osascript"

	// DefaultSyncTimeout bounds a synchronous buffered Run.
	DefaultSyncTimeout = 500 * time.Millisecond

	// rawOutputFlag asks osascript for recompilable output.
	rawOutputFlag = "-ss"
)

type mode int

const (
	modeSync mode = iota
	modeAsync
)

func (m mode) String() string {
	if m == modeAsync {
		return "async"
	}
	return "sync"
}

// Runner launches osascript. A Runner holds no per-call state and is safe for
// concurrent use.
type Runner struct {
	// Interpreter is the binary to launch. Empty means DefaultInterpreter.
	Interpreter string

	// SyncTimeout bounds a synchronous buffered Run when Options.Timeout is
	// zero. Empty means DefaultSyncTimeout.
	SyncTimeout time.Duration

	// GOOS overrides runtime.GOOS for the platform gate. Tests set it to run a
	// stand-in interpreter on other systems.
	GOOS string
}

// NewRunner creates a Runner for the given interpreter binary.
// An empty interpreter selects DefaultInterpreter.
func NewRunner(interpreter string) *Runner {
	return &Runner{Interpreter: interpreter}
}

var defaultRunner = NewRunner("")

// Run executes s with the default Runner and blocks until it finishes.
func Run(ctx context.Context, s Script, opts Options) (string, error) {
	return defaultRunner.Run(ctx, s, opts)
}

// Start executes s with the default Runner without blocking.
func Start(ctx context.Context, s Script, opts Options) *Execution {
	return defaultRunner.Start(ctx, s, opts)
}

// Command returns the argv the default Runner would launch for s.
func Command(s Script, opts Options) ([]string, error) {
	return defaultRunner.Command(s, opts)
}

// Run executes s and blocks until the interpreter exits or the timeout
// elapses. It returns stdout trimmed of surrounding whitespace.
func (r *Runner) Run(ctx context.Context, s Script, opts Options) (string, error) {
	return r.execute(ctx, s, opts, modeSync)
}

// Start executes s on its own goroutine. The returned Execution resolves
// exactly once, after the process has exited.
func (r *Runner) Start(ctx context.Context, s Script, opts Options) *Execution {
	e := newExecution()
	go func() {
		out, err := r.execute(ctx, s, opts, modeAsync)
		e.resolve(out, err)
	}()
	return e
}

// Command returns the full argv for s without launching anything. The raw
// output flag, when requested, comes first so osascript parses it as an
// option for both inline and file scripts.
func (r *Runner) Command(s Script, opts Options) ([]string, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return nil, err
	}
	argv := make([]string, 0, 2+len(tokens)+len(opts.Args))
	argv = append(argv, r.interpreter())
	if opts.RawOutput {
		argv = append(argv, rawOutputFlag)
	}
	argv = append(argv, tokens...)
	argv = append(argv, opts.Args...)
	return argv, nil
}

func (r *Runner) execute(ctx context.Context, s Script, opts Options, m mode) (string, error) {
	if err := checkPlatform(r.platform()); err != nil {
		return "", err
	}

	argv, err := r.Command(s, opts)
	if err != nil {
		return "", err
	}

	timeout := r.timeout(opts, m)
	slog.Debug("spawning osascript",
		"script", s.String(),
		"strategy", opts.Strategy,
		"mode", m,
		"args", len(opts.Args),
		"timeout", timeout,
	)

	start := time.Now()
	out, err := launch(ctx, argv, opts, timeout)
	slog.Debug("osascript exited", "duration", time.Since(start), "error", err)
	return out, err
}

// timeout picks the bound for one call. Only a synchronous buffered call gets
// a default bound.
func (r *Runner) timeout(opts Options, m mode) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	if m == modeSync && opts.Strategy == Buffered {
		if r.SyncTimeout > 0 {
			return r.SyncTimeout
		}
		return DefaultSyncTimeout
	}
	return 0
}

func (r *Runner) interpreter() string {
	if r.Interpreter != "" {
		return r.Interpreter
	}
	return DefaultInterpreter
}

func (r *Runner) platform() string {
	if r.GOOS != "" {
		return r.GOOS
	}
	return runtime.GOOS
}

// Execution is a pending asynchronous run.
type Execution struct {
	done chan struct{}
	out  string
	err  error
}

func newExecution() *Execution {
	return &Execution{done: make(chan struct{})}
}

func (e *Execution) resolve(out string, err error) {
	e.out, e.err = out, err
	close(e.done)
}

// Done is closed once the run has resolved.
func (e *Execution) Done() <-chan struct{} { return e.done }

// Wait blocks until the run resolves and returns its result.
func (e *Execution) Wait() (string, error) {
	<-e.done
	return e.out, e.err
}
