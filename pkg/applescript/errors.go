package applescript

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is matched by every PlatformError.
var ErrUnsupportedPlatform = errors.New("applescript: macOS only")

// PlatformError is returned before any process is launched when the host is
// not macOS.
type PlatformError struct {
	GOOS string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("applescript: macOS only (running on %s)", e.GOOS)
}

// Is makes errors.Is(err, ErrUnsupportedPlatform) hold.
func (e *PlatformError) Is(target error) bool {
	return target == ErrUnsupportedPlatform
}

// ScriptNotFoundError is returned when a script file reference does not
// resolve to an existing file.
type ScriptNotFoundError struct {
	Path string
	Err  error
}

func (e *ScriptNotFoundError) Error() string {
	return "applescript: script does not exist: " + e.Path
}

func (e *ScriptNotFoundError) Unwrap() error { return e.Err }

// ExitError reports an interpreter that started but did not finish cleanly:
// a non-zero exit status or an elapsed timeout.
type ExitError struct {
	Code     int    // exit status, -1 when killed
	Stderr   string // captured by the streaming strategy only
	TimedOut bool
	Err      error
}

func (e *ExitError) Error() string {
	if e.TimedOut {
		return "applescript: osascript timed out"
	}
	msg := fmt.Sprintf("applescript: osascript exited with code %d", e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }
