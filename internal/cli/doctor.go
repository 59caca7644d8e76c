package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/osarun/internal/config"
	"github.com/ppiankov/osarun/internal/reporter"
	"github.com/ppiankov/osarun/pkg/applescript"
)

// probeTimeout bounds the smoke-test script run by doctor.
const probeTimeout = 5 * time.Second

// checkResult is one line of doctor output.
type checkResult struct {
	Name   string
	OK     bool
	Detail string
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that osascript can be run on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runChecks(cmd.Context(), configFile, exec.LookPath)
			return printChecks(cmd.OutOrStdout(), results, isTerminal())
		},
	}
}

// runChecks stops early once a failed check makes the following ones moot.
func runChecks(ctx context.Context, cfgPath string, lookPath func(string) (string, error)) []checkResult {
	var results []checkResult

	cfg, err := config.LoadSettings(cfgPath)
	switch {
	case err != nil:
		results = append(results, checkResult{"config", false, err.Error()})
		cfg = &config.Settings{}
	case fileExists(cfgPath):
		results = append(results, checkResult{"config", true, cfgPath})
	default:
		results = append(results, checkResult{"config", true, "no config file, using defaults"})
	}

	if err := applescript.CheckPlatform(); err != nil {
		return append(results, checkResult{"platform", false, err.Error()})
	}
	results = append(results, checkResult{"platform", true, runtime.GOOS + "/" + runtime.GOARCH})

	runner := cfg.Runner()
	name := runner.Interpreter
	if name == "" {
		name = applescript.DefaultInterpreter
	}
	path, err := lookPath(name)
	if err != nil {
		return append(results, checkResult{"interpreter", false, err.Error()})
	}
	results = append(results, checkResult{"interpreter", true, path})

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := runner.Run(ctx, applescript.Text(`return "ok"`), applescript.Options{Timeout: probeTimeout})
	if err != nil || out != "ok" {
		detail := fmt.Sprintf("unexpected output %q", out)
		if err != nil {
			detail = err.Error()
		}
		return append(results, checkResult{"probe", false, detail})
	}
	return append(results, checkResult{"probe", true, `return "ok" succeeded`})
}

func printChecks(w io.Writer, results []checkResult, color bool) error {
	text := reporter.NewTextReporter(w, color)
	failed := 0
	for _, r := range results {
		text.PrintCheck(r.Name, r.OK, r.Detail)
		if !r.OK {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
