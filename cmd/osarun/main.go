package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/osarun/internal/cli"
	"github.com/ppiankov/osarun/pkg/applescript"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to the documented exit statuses.
func exitCode(err error) int {
	var exitErr *applescript.ExitError
	switch {
	case errors.Is(err, applescript.ErrUnsupportedPlatform):
		return 2
	case errors.As(err, &exitErr):
		return 3
	default:
		return 1
	}
}
