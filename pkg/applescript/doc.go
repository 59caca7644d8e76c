// Package applescript runs AppleScript source or compiled script files
// through osascript and returns the trimmed textual result.
//
// Run blocks until the interpreter exits. Start returns immediately with an
// Execution that resolves once the process has exited. Both go through the
// same launch path, parameterized by Strategy.
package applescript
