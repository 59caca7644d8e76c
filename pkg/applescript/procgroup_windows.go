//go:build windows

package applescript

import "os/exec"

// setupProcessGroup is a no-op on Windows. The platform gate rejects every
// call there before a process is built; this only keeps the package compiling.
func setupProcessGroup(cmd *exec.Cmd) {}
