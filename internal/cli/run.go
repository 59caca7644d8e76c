package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/osarun/internal/config"
	"github.com/ppiankov/osarun/internal/reporter"
	"github.com/ppiankov/osarun/pkg/applescript"
)

// invocationFlags are the per-run settings shared by run and watch.
type invocationFlags struct {
	raw      bool
	strategy string
	timeout  time.Duration
}

func (f *invocationFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.raw, "raw", false, "print the recompilable source form of the result (osascript -ss)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "buffered", "launch strategy: buffered (exec) or streaming (spawn)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "kill osascript after this duration (0 = default for the mode)")
}

// options merges config defaults with flags the user set explicitly.
func (f *invocationFlags) options(cmd *cobra.Command, cfg *config.Settings, scriptArgs []string) (applescript.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("raw") {
		opts.RawOutput = f.raw
	}
	if cmd.Flags().Changed("strategy") {
		if opts.Strategy, err = applescript.ParseStrategy(f.strategy); err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = f.timeout
	}
	if len(scriptArgs) > 0 {
		opts.Args = scriptArgs
	}
	return opts, nil
}

type runFlags struct {
	async      bool
	stream     bool
	dryRun     bool
	format     string
	reportPath string
}

func newRunCmd() *cobra.Command {
	var (
		exprs []string
		file  string
		inv   invocationFlags
		rf    runFlags
	)

	cmd := &cobra.Command{
		Use:   "run [script] [-- args...]",
		Short: "Run AppleScript source or a script file",
		Long: `Run AppleScript and print the trimmed result.

The script is taken from --expr lines, --file, the first argument (a path ending
in .scpt or .applescript runs that file) or stdin. Remaining arguments are passed
to the script's run handler as argv.`,
		Example: `  osarun run 'return "unicorn"'
  osarun run -e 'on run argv' -e 'return item 1 of argv' -e 'end run' -- a b
  osarun run ./hello.applescript --raw
  echo 'return 1 + 1' | osarun run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source, scriptArgs := splitArgs(args, cmd.ArgsLenAtDash(), len(exprs) > 0 || file != "")
			script, err := resolveScript(exprs, file, source, cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts, err := inv.options(cmd, cfg, scriptArgs)
			if err != nil {
				return err
			}
			if rf.stream {
				opts.Strategy = applescript.Streaming
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return executeScript(ctx, cmd.OutOrStdout(), cfg.Runner(), script, opts, rf)
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "script line (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "run this script file regardless of extension")
	inv.register(cmd)
	cmd.Flags().BoolVar(&rf.async, "async", false, "run without blocking and wait for completion (no default timeout)")
	cmd.Flags().BoolVar(&rf.stream, "stream", false, "use the streaming strategy and echo output as it arrives")
	cmd.Flags().BoolVar(&rf.dryRun, "dry-run", false, "print the osascript command line without running it")
	cmd.Flags().StringVar(&rf.format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&rf.reportPath, "report", "", "also write the JSON result to this path")
	cmd.MarkFlagsMutuallyExclusive("expr", "file")

	return cmd
}

// splitArgs separates the script source from the script's own arguments.
// Without --expr or --file the first argument before "--" is the source.
func splitArgs(args []string, dash int, haveFlags bool) (source string, scriptArgs []string) {
	if haveFlags || len(args) == 0 || dash == 0 {
		return "", args
	}
	return args[0], args[1:]
}

// resolveScript builds the script from flags, the source argument or stdin.
func resolveScript(exprs []string, file, source string, stdin io.Reader) (applescript.Script, error) {
	switch {
	case len(exprs) > 0:
		return applescript.Lines(exprs...), nil
	case file != "":
		return applescript.File(file), nil
	case source != "" && source != "-":
		return applescript.Text(source), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return applescript.Script{}, fmt.Errorf("read script from stdin: %w", err)
	}
	src := strings.TrimRight(string(data), "\r\n")
	if src == "" {
		return applescript.Script{}, fmt.Errorf("no script given: pass source, --expr, --file or pipe it on stdin")
	}
	// stdin is always source, never a path
	return applescript.Lines(strings.Split(src, "\n")...), nil
}

func executeScript(ctx context.Context, w io.Writer, runner *applescript.Runner, script applescript.Script, opts applescript.Options, rf runFlags) error {
	if rf.format != "text" && rf.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", rf.format)
	}
	if rf.stream && rf.format == "json" {
		return fmt.Errorf("--stream cannot be combined with --format json")
	}

	argv, err := runner.Command(script, opts)
	if err != nil {
		return err
	}
	text := reporter.NewTextReporter(w, false)
	if rf.dryRun {
		text.PrintDryRun(argv)
		return nil
	}

	streamed := false
	if rf.stream {
		opts.OnOutput = func(chunk []byte) {
			streamed = true
			_, _ = w.Write(chunk)
		}
	}

	mode := "sync"
	if rf.async {
		mode = "async"
	}
	res := reporter.NewResult(script.String(), opts.Strategy.String(), mode, argv)

	var out string
	if rf.async {
		out, err = wait(runner.Start(ctx, script, opts))
	} else {
		out, err = runner.Run(ctx, script, opts)
	}
	res.Finish(out, err)

	if rf.reportPath != "" {
		if werr := reporter.WriteJSONReport(res, rf.reportPath); werr != nil {
			slog.Warn("report not written", "path", rf.reportPath, "error", werr)
		}
	}

	switch {
	case rf.format == "json":
		if werr := reporter.WriteJSON(w, res); werr != nil {
			return werr
		}
	case !streamed:
		text.PrintResult(res)
	}

	if err != nil {
		return fmt.Errorf("run %s: %w", script, err)
	}
	return nil
}

// wait blocks on an async execution, logging while it is still running.
func wait(e *applescript.Execution) (string, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-e.Done():
			return e.Wait()
		case <-ticker.C:
			slog.Debug("osascript still running", "elapsed", time.Since(start).Truncate(time.Second))
		}
	}
}
