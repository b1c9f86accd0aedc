package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"weblint/internal/analyzer"
	"weblint/internal/diag"
	"weblint/internal/fix"
	"weblint/internal/source"
	"weblint/internal/trace"
	"weblint/internal/workspace"
)

// lintFlags are the flags of lint, check and fix.
type lintFlags struct {
	format          string
	write           bool
	unsafe          bool
	suppress        bool
	reason          string
	only            []string
	skip            []string
	unstable        bool
	watch           bool
	diagnosticLevel string
	errorOnWarnings bool
	limit           int
	verbose         bool
}

// lintMode distinguishes the three commands sharing runLint.
type lintMode uint8

const (
	modeLint lintMode = iota
	// modeCheck also enforces assist actions.
	modeCheck
	// modeFix prints fixes as diffs unless --write is given.
	modeFix
)

func registerLintFlags(cmd *cobra.Command, mode lintMode) {
	f := cmd.Flags()
	f.String("format", "pretty", "output format (pretty|short|json|sarif|golden)")
	f.Bool("write", false, "apply safe fixes to the files")
	f.Bool("unsafe", false, "also apply unsafe fixes (requires --write, or the fix command)")
	f.Bool("suppress", false, "insert suppression comments instead of fixing")
	f.String("reason", "", "explanation written after the colon of inserted suppressions")
	f.StringArray("only", nil, "run only this rule or group (repeatable)")
	f.StringArray("skip", nil, "skip this rule or group (repeatable)")
	f.Bool("unstable", false, "enable recommended nursery rules")
	f.String("diagnostic-level", "info", "lowest severity to print (info|warn|error)")
	f.Bool("error-on-warnings", false, "exit with an error when warnings are reported")
	f.Int("max-per-file", 0, "cap rule diagnostics per file (0 = unlimited)")
	f.Bool("verbose", false, "print verbose diagnostics, notes and advices")
	if mode != modeFix {
		f.Bool("watch", false, "re-lint when files change")
	}
}

func readLintFlags(cmd *cobra.Command) (lintFlags, error) {
	var lf lintFlags
	var err error
	f := cmd.Flags()
	if lf.format, err = f.GetString("format"); err != nil {
		return lf, fmt.Errorf("failed to get format flag: %w", err)
	}
	if lf.write, err = f.GetBool("write"); err != nil {
		return lf, fmt.Errorf("failed to get write flag: %w", err)
	}
	if lf.unsafe, err = f.GetBool("unsafe"); err != nil {
		return lf, fmt.Errorf("failed to get unsafe flag: %w", err)
	}
	if lf.suppress, err = f.GetBool("suppress"); err != nil {
		return lf, fmt.Errorf("failed to get suppress flag: %w", err)
	}
	if lf.reason, err = f.GetString("reason"); err != nil {
		return lf, fmt.Errorf("failed to get reason flag: %w", err)
	}
	if lf.only, err = f.GetStringArray("only"); err != nil {
		return lf, fmt.Errorf("failed to get only flag: %w", err)
	}
	if lf.skip, err = f.GetStringArray("skip"); err != nil {
		return lf, fmt.Errorf("failed to get skip flag: %w", err)
	}
	if lf.unstable, err = f.GetBool("unstable"); err != nil {
		return lf, fmt.Errorf("failed to get unstable flag: %w", err)
	}
	if lf.diagnosticLevel, err = f.GetString("diagnostic-level"); err != nil {
		return lf, fmt.Errorf("failed to get diagnostic-level flag: %w", err)
	}
	if lf.errorOnWarnings, err = f.GetBool("error-on-warnings"); err != nil {
		return lf, fmt.Errorf("failed to get error-on-warnings flag: %w", err)
	}
	if lf.limit, err = f.GetInt("max-per-file"); err != nil {
		return lf, fmt.Errorf("failed to get max-per-file flag: %w", err)
	}
	if lf.verbose, err = f.GetBool("verbose"); err != nil {
		return lf, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if f.Lookup("watch") != nil {
		if lf.watch, err = f.GetBool("watch"); err != nil {
			return lf, fmt.Errorf("failed to get watch flag: %w", err)
		}
	}
	return lf, nil
}

func newLintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [flags] [path...]",
		Short: "Run the linter on files and directories",
		Long: `Run the enabled lint rules on every supported file under the given paths
(default: the current directory). With --write, safe fixes are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error { return a.runLint(cmd, args, modeLint) },
	}
	registerLintFlags(cmd, modeLint)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [path...]",
		Short: "Run the linter and enforce assist actions",
		Long: `Like lint, but pending assist actions (for example organizeImports)
are reported as errors.`,
		RunE: func(cmd *cobra.Command, args []string) error { return a.runLint(cmd, args, modeCheck) },
	}
	registerLintFlags(cmd, modeCheck)
	return cmd
}

func newFixCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] [path...]",
		Short: "Show or apply the available fixes",
		Long: `Run the fixer until no more fixes apply. Without --write the changes are
printed as unified diffs and no file is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error { return a.runLint(cmd, args, modeFix) },
	}
	registerLintFlags(cmd, modeFix)
	return cmd
}

func buildEnvironment(lf lintFlags) (analyzer.Environment, error) {
	env := analyzer.Environment{Unstable: lf.unstable}
	for _, s := range lf.only {
		sel, err := analyzer.ParseRuleSelector(s)
		if err != nil {
			return env, fmt.Errorf("--only: %w", err)
		}
		env.Only = append(env.Only, sel)
	}
	for _, s := range lf.skip {
		sel, err := analyzer.ParseRuleSelector(s)
		if err != nil {
			return env, fmt.Errorf("--skip: %w", err)
		}
		env.Skip = append(env.Skip, sel)
	}
	return env, nil
}

func (lf lintFlags) lintOptions(mode lintMode, jobs int) (workspace.LintOptions, error) {
	opts := workspace.LintOptions{Jobs: jobs, Limit: lf.limit, SuppressionReason: lf.reason}
	switch {
	case lf.unsafe && lf.suppress:
		return opts, errors.New("--unsafe and --suppress cannot be used together")
	case lf.unsafe && !lf.write && mode != modeFix:
		return opts, errors.New("--unsafe requires --write")
	case lf.suppress && !lf.write && mode != modeFix:
		return opts, errors.New("--suppress requires --write")
	case lf.reason != "" && !lf.suppress:
		return opts, errors.New("--reason requires --suppress")
	case lf.watch && lf.write:
		return opts, errors.New("--watch cannot be combined with --write")
	}
	opts.Fix = lf.write || mode == modeFix
	opts.Write = lf.write
	switch {
	case lf.suppress:
		opts.FixMode = fix.ApplySuppressions
	case lf.unsafe:
		opts.FixMode = fix.SafeAndUnsafeFixes
	default:
		opts.FixMode = fix.SafeFixes
	}
	return opts, nil
}

func (a *app) runLint(cmd *cobra.Command, args []string, mode lintMode) error {
	lf, err := readLintFlags(cmd)
	if err != nil {
		return err
	}
	rf, err := newReportFormat(lf.format)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	minLevel, err := diag.ParseSeverity(lf.diagnosticLevel)
	if err != nil {
		return &exitError{code: exitFatal, err: fmt.Errorf("--diagnostic-level: %w", err)}
	}
	env, err := buildEnvironment(lf)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	opts, err := lf.lintOptions(mode, a.g.jobs)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	useUI := rf == formatPretty && !lf.watch && !a.g.quiet && a.g.ui.resolve(cmd.ErrOrStderr(), true)
	var events chan workspace.Event
	var sink workspace.ProgressSink
	if useUI {
		events = make(chan workspace.Event, 256)
		sink = workspace.ChannelSink{Ch: events}
	}
	ws, err := a.openWorkspace(env, sink)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	rep := &reporter{
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		ws:      ws,
		format:  rf,
		mode:    mode,
		flags:   lf,
		g:       a.g,
		color:   a.useColor(cmd.OutOrStdout()),
		minimum: minLevel,
	}

	if lf.watch {
		return a.watch(cmd, ws, rep, args, opts)
	}

	ctx, stage := trace.Start(cmd.Context(), trace.ScopeStage, "collect")
	timing := a.timer.Start("collect")
	files, err := ws.Collect(args)
	timing.Stop(fmt.Sprintf("%d files", len(files)))
	stage.End(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}

	ctx, stage = trace.Start(ctx, trace.ScopeStage, "lint")
	timing = a.timer.Start("lint")
	var results []workspace.FileResult
	if useUI {
		results, err = runLintWithUI(ctx, cmd.ErrOrStderr(), ws, files, opts, events)
	} else {
		results, err = ws.LintAll(ctx, files, opts)
	}
	elapsed := timing.Stop(fmt.Sprintf("%d files", len(files)))
	stage.End("")
	if err != nil {
		dumpTraceRing(cmd)
		return &exitError{code: exitFatal, err: err}
	}

	_, stage = trace.Start(cmd.Context(), trace.ScopeStage, "report")
	timing = a.timer.Start("report")
	failed, err := rep.report(results, elapsed)
	timing.Stop("")
	stage.End("")
	if a.g.timings {
		fmt.Fprint(cmd.ErrOrStderr(), a.timer.Summary())
	}
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	if failed {
		return &exitError{code: exitDiagnostics}
	}
	return nil
}

// watch lints once, then again on every change until the context ends.
func (a *app) watch(cmd *cobra.Command, ws *workspace.Workspace, rep *reporter, args []string, opts workspace.LintOptions) error {
	ctx := cmd.Context()
	files, err := ws.Collect(args)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	timing := a.timer.Start("lint")
	results, err := ws.LintAll(ctx, files, opts)
	elapsed := timing.Stop(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &exitError{code: exitFatal, err: err}
	}
	if _, err := rep.report(results, elapsed); err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	if !a.g.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes. Press Ctrl+C to stop.")
	}

	var mu sync.Mutex
	err = ws.Watch(ctx, args, opts, workspace.DefaultDebounce, func(results []workspace.FileResult, elapsed time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
			return
		}
		if _, err := rep.report(results, elapsed); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	})
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	return nil
}

// fileErrorDiagnostic turns a per-file failure into a diagnostic.
func fileErrorDiagnostic(ws *workspace.Workspace, r *workspace.FileResult) diag.Diagnostic {
	msg := fmt.Sprintf("%s: %v", ws.Config().Rel(r.Path), r.Err)
	d := diag.NewError(diag.CatIO, source.Span{File: r.File}, msg)
	if errors.Is(r.Err, workspace.ErrUnsupportedLanguage) {
		d.Severity = diag.SevWarning
	}
	return d
}

func isAssist(d *diag.Diagnostic) bool { return d.Category.Root() == "assist" }
