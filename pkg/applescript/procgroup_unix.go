//go:build !windows

package applescript

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup starts osascript in its own process group and makes
// context cancellation kill the whole group, so helpers spawned by a script
// (do shell script) do not keep the output pipe open after a timeout.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil
	}
}
