package applescript

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects how the interpreter process is launched.
type Strategy int

const (
	// Buffered waits for the process and captures stdout in one piece.
	// Stderr is discarded.
	Buffered Strategy = iota
	// Streaming reads stdout chunk by chunk as it is produced and keeps
	// stderr for the failure report.
	Streaming
)

func (s Strategy) String() string {
	switch s {
	case Buffered:
		return "buffered"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts "buffered" and "streaming" as well as the older
// "exec" and "spawn" spellings. An empty string yields Buffered.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "buffered", "exec":
		return Buffered, nil
	case "streaming", "spawn":
		return Streaming, nil
	default:
		return Buffered, fmt.Errorf("unknown strategy %q (want buffered or streaming)", name)
	}
}

// Options configures a single invocation. The zero value asks for
// human-readable output, no script arguments and the buffered strategy.
type Options struct {
	// RawOutput requests osascript's recompilable source form (-ss), so a
	// string result comes back quoted and a list comes back as {...}.
	RawOutput bool

	// Args are passed to the script's run handler as argv.
	Args []string

	Strategy Strategy

	// Timeout bounds the process lifetime. Zero selects the mode default:
	// Runner.SyncTimeout for a buffered Run, no bound otherwise.
	Timeout time.Duration

	// OnOutput receives each stdout chunk under the streaming strategy, in
	// arrival order, before the call resolves. Ignored when buffered.
	OnOutput func(chunk []byte)
}
