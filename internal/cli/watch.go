package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/osarun/internal/config"
	"github.com/ppiankov/osarun/internal/reporter"
	"github.com/ppiankov/osarun/internal/watch"
	"github.com/ppiankov/osarun/pkg/applescript"
)

func newWatchCmd() *cobra.Command {
	var (
		inv      invocationFlags
		poll     bool
		debounce time.Duration
		tuiMode  string
	)

	cmd := &cobra.Command{
		Use:   "watch <file> [-- args...]",
		Short: "Re-run a script file every time it changes",
		Long:  "Watch runs the script file once, then again after every save, showing the latest result.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts, err := inv.options(cmd, cfg, args[1:])
			if err != nil {
				return err
			}

			wc := cfg.WatchSettings()
			if cmd.Flags().Changed("poll") {
				wc.Poll = poll
			}
			if cmd.Flags().Changed("debounce") {
				wc.Debounce = debounce
			}

			display, err := resolveDisplayMode(tuiMode, isTerminal())
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cfg.Runner(), args[0], opts, wc, display)
		},
	}

	inv.register(cmd)
	cmd.Flags().BoolVar(&poll, "poll", false, "poll the file instead of using filesystem notifications")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period after a change before re-running (default 200ms)")
	cmd.Flags().StringVar(&tuiMode, "tui", "auto", "display mode: full (interactive TUI), off (plain log), auto (detect TTY)")

	return cmd
}

// resolveDisplayMode maps the --tui flag to "full" or "off".
func resolveDisplayMode(mode string, tty bool) (string, error) {
	switch mode {
	case "full", "off":
		return mode, nil
	case "auto", "":
		if tty {
			return "full", nil
		}
		return "off", nil
	default:
		return "", fmt.Errorf("unknown --tui mode %q (want full, off or auto)", mode)
	}
}

func runWatch(parent context.Context, runner *applescript.Runner, path string, opts applescript.Options, wc config.WatchConfig, display string) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt)
	defer cancel()

	script := applescript.File(path)
	text := reporter.NewTextReporter(os.Stdout, isTerminal())

	var program *tea.Program
	onChange := func(ctx context.Context, _ string) {
		if program != nil {
			program.Send(reporter.RunStarted())
		}

		res := runWatched(ctx, runner, script, opts)
		if res.Failed() {
			slog.Debug("watched script failed", "run_id", res.RunID, "error", res.Error)
		}

		if program != nil {
			program.Send(reporter.RunFinished(res))
		} else {
			text.PrintSummary(res)
		}
	}

	w, err := watch.New(watch.Config{
		Path:         path,
		Debounce:     wc.Debounce,
		PollMode:     wc.Poll,
		PollInterval: wc.PollInterval,
		RunOnStart:   true,
		OnChange:     onChange,
	})
	if err != nil {
		return err
	}

	var tuiDone chan struct{}
	if display == "full" {
		program = tea.NewProgram(reporter.NewWatchModel(w.Path(), cancel), tea.WithAltScreen())
		tuiDone = make(chan struct{})
		go func() {
			defer close(tuiDone)
			if _, err := program.Run(); err != nil {
				slog.Warn("TUI error", "error", err)
			}
			cancel()
		}()
	}

	err = w.Run(ctx)

	if program != nil {
		program.Quit()
		<-tuiDone
	}
	return err
}

// runWatched runs the watched file once. Nothing is launched when the file
// cannot be prepared, e.g. it was removed between saves.
func runWatched(ctx context.Context, runner *applescript.Runner, script applescript.Script, opts applescript.Options) *reporter.Result {
	argv, err := runner.Command(script, opts)
	res := reporter.NewResult(script.String(), opts.Strategy.String(), "async", argv)
	if err != nil {
		res.Finish("", err)
		return res
	}

	// async mode: a dialog may legitimately wait for the user
	out, err := runner.Start(ctx, script, opts).Wait()
	res.Finish(out, err)
	return res
}
