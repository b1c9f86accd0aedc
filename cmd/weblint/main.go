package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"weblint/internal/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1 // error-level diagnostics were reported
	exitFatal       = 2 // the run itself failed
)

// exitError carries a process exit code through cobra's error return.
// A nil err means the reason was already printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	a.close(stderr)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFatal
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "weblint",
		Short: "Linter for JavaScript, TypeScript, JSX, CSS and HTML",
		Long: `weblint lints web projects using the configuration found in biome.json,
biome.jsonc or the "biome" field of package.json.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.before,
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 20, "maximum number of diagnostics to print (0 = unlimited)")
	pf.Int("jobs", 0, "max parallel workers (0 = GOMAXPROCS)")
	pf.String("config-path", "", "configuration file or directory (env "+envConfigPath+")")
	pf.StringArray("config-set", nil, "override a configuration value, e.g. linter.rules.style.noVar=off")
	pf.String("log-level", "", "log level (trace|debug|info|warn|error|off; env "+envLogLevel+")")
	pf.String("log-file", "", "write logs to a file instead of stderr")
	pf.String("ui", "off", "progress UI mode (auto|on|off)")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	pf.Bool("no-cache", false, "disable the on-disk result cache")
	pf.String("cache-dir", "", "result cache directory (default $XDG_CACHE_HOME/weblint)")

	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 = disabled)")

	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(
		newLintCmd(a),
		newCheckCmd(a),
		newFixCmd(a),
		newExplainCmd(a),
		newRulesCmd(a),
		newConfigCmd(a),
		newInitCmd(a),
		newVersionCmd(),
	)
	return root
}

// isTerminal проверяет, является ли writer терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
