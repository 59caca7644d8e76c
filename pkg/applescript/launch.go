package applescript

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

// waitDelay caps how long Wait keeps the pipes open after the process has
// been killed.
const waitDelay = 100 * time.Millisecond

// chunkSize is the read size for the streaming strategy.
const chunkSize = 32 * 1024

// launch starts argv[0] with the remaining arguments using the strategy from
// opts and returns the trimmed stdout. A zero timeout means no bound.
func launch(ctx context.Context, argv []string, opts Options, timeout time.Duration) (string, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	setupProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var (
		stdout []byte
		stderr string
		err    error
	)
	switch opts.Strategy {
	case Streaming:
		stdout, stderr, err = runStreaming(cmd, opts.OnOutput)
	default:
		stdout, err = runBuffered(cmd)
	}

	if err != nil {
		return "", classify(err, stderr, timedOut(ctx, runCtx))
	}
	return strings.TrimSpace(string(stdout)), nil
}

// runBuffered blocks until exit with stdout collected in one buffer.
func runBuffered(cmd *exec.Cmd) ([]byte, error) {
	cmd.Stderr = io.Discard
	return cmd.Output()
}

// runStreaming appends stdout chunks to a buffer owned by this call as they
// arrive. Every chunk is consumed before Wait decides the outcome.
func runStreaming(cmd *exec.Cmd, onOutput func([]byte)) ([]byte, string, error) {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, "", err
	}
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		return nil, "", err
	}

	var out bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, rerr := pipe.Read(chunk)
		if n > 0 {
			out.Write(chunk[:n])
			if onOutput != nil {
				onOutput(bytes.Clone(chunk[:n]))
			}
		}
		if rerr != nil {
			// EOF or a closed pipe; Wait reports the real outcome.
			break
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, errBuf.String(), err
	}
	return out.Bytes(), errBuf.String(), nil
}

// classify maps a process error to the package's error kinds. Launch errors
// from os/exec pass through untouched.
func classify(err error, stderr string, timeout bool) error {
	if timeout {
		return &ExitError{Code: -1, TimedOut: true, Err: err}
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{
			Code:   ee.ExitCode(),
			Stderr: strings.TrimSpace(stderr),
			Err:    err,
		}
	}
	return err
}

// timedOut reports whether runCtx ended on its own deadline rather than
// because the caller's context ended.
func timedOut(parent, runCtx context.Context) bool {
	return parent.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
}
