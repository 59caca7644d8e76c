package applescript

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeInterpreter stands in for osascript: it prints each argument on its own
// line followed by padding whitespace. FAKE_OSA_MODE switches to failure,
// slow or chunked behaviour.
const fakeInterpreter = `#!/bin/sh
case "$FAKE_OSA_MODE" in
fail)
	echo "execution error: boom (-2753)" >&2
	exit 1
	;;
sleep)
	exec sleep 5
	;;
chunks)
	printf 'one '
	sleep 0.05
	printf 'two\n\n'
	exit 0
	;;
stderr)
	echo "noise on stderr" >&2
	;;
esac
for a in "$@"; do
	printf '%s\n' "$a"
done
printf '  \n'
`

// newFakeRunner returns a Runner that passes the platform gate and launches
// the fake interpreter.
func newFakeRunner(t *testing.T) *Runner {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osascript")
	if err := os.WriteFile(path, []byte(fakeInterpreter), 0o755); err != nil {
		t.Fatal(err)
	}
	return &Runner{Interpreter: path, SyncTimeout: 2 * time.Second, GOOS: "darwin"}
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
