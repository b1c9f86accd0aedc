package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"weblint/internal/diag"
	"weblint/internal/diagfmt"
	"weblint/internal/fix"
	"weblint/internal/version"
	"weblint/internal/workspace"
)

type reportFormat string

const (
	formatPretty reportFormat = "pretty"
	formatShort  reportFormat = "short"
	formatJSON   reportFormat = "json"
	formatSarif  reportFormat = "sarif"
	formatGolden reportFormat = "golden"
)

func newReportFormat(s string) (reportFormat, error) {
	switch f := reportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatPretty, formatShort, formatJSON, formatSarif, formatGolden:
		return f, nil
	}
	return "", fmt.Errorf("invalid --format value %q (expected pretty|short|json|sarif|golden)", s)
}

// machine formats print nothing but the document itself.
func (f reportFormat) machine() bool {
	return f == formatJSON || f == formatSarif || f == formatGolden
}

type reporter struct {
	out     io.Writer
	errOut  io.Writer
	ws      *workspace.Workspace
	format  reportFormat
	mode    lintMode
	flags   lintFlags
	g       *globalOptions
	color   bool
	minimum diag.Severity
	// optionsShown keeps option diagnostics to the first round of a watch.
	optionsShown bool
}

type summary struct {
	diag.Tally
	files int
	fixed int
	diffs int
}

// report prints one round of results and tells whether the run failed.
func (r *reporter) report(results []workspace.FileResult, elapsed time.Duration) (bool, error) {
	var diags []diag.Diagnostic
	if !r.optionsShown {
		diags = append(diags, r.ws.Config().Diagnostics...)
		diags = append(diags, r.ws.ConfigDiagnostics()...)
		r.optionsShown = true
	}
	sum := summary{files: len(results)}
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			diags = append(diags, fileErrorDiagnostic(r.ws, res))
			continue
		}
		diags = append(diags, res.Diagnostics...)
		if res.Fix != nil && res.Fix.Changed() {
			sum.fixed++
		}
	}

	diags = diag.Unique(diags)
	kept := diags[:0]
	for _, d := range diags {
		if r.mode == modeCheck && isAssist(&d) && d.Severity < diag.SevError {
			d.Severity = diag.SevError
		}
		sum.Add(d.Severity)
		if d.Severity >= r.minimum {
			kept = append(kept, d)
		}
	}
	diags = kept
	diag.SortDiagnostics(diags)

	if err := r.print(diags); err != nil {
		return false, err
	}
	if r.mode == modeFix && !r.flags.write && !r.format.machine() {
		if err := r.printDiffs(results, &sum); err != nil {
			return false, err
		}
	}
	if !r.g.quiet && !r.format.machine() {
		r.printSummary(sum, elapsed)
	}

	failed := sum.Errors > 0 || (r.flags.errorOnWarnings && sum.Warnings > 0)
	return failed, nil
}

func (r *reporter) print(diags []diag.Diagnostic) error {
	files := r.ws.Files()
	base := r.ws.Config().Root
	switch r.format {
	case formatJSON:
		return diagfmt.JSON(r.out, diags, files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			BaseDir:          base,
			Max:              r.g.maxDiagnostics,
			Indent:           true,
		})
	case formatSarif:
		return diagfmt.Sarif(r.out, diags, files, diagfmt.SarifRunMeta{
			ToolName:       "weblint",
			ToolVersion:    version.Version,
			InformationURI: "https://biomejs.dev/linter/rules/",
			InvocationArgs: os.Args,
		})
	case formatGolden:
		_, err := io.WriteString(r.out, diagfmt.FormatGolden(diags, files, r.flags.verbose))
		return err
	}

	shown := diags
	if limit := r.g.maxDiagnostics; limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	opts := diagfmt.PrettyOpts{
		Color:       r.color,
		Context:     2,
		PathMode:    diagfmt.PathModeRelative,
		BaseDir:     base,
		ShowNotes:   true,
		ShowAdvices: true,
		Verbose:     r.flags.verbose,
	}
	var err error
	if r.format == formatShort {
		err = diagfmt.Short(r.out, shown, files, opts)
	} else {
		err = diagfmt.Pretty(r.out, shown, files, opts)
	}
	if err != nil {
		return err
	}
	if hidden := len(diags) - len(shown); hidden > 0 && !r.g.quiet {
		fmt.Fprintf(r.errOut, "The number of diagnostics exceeds the limit allowed. %d diagnostics were not printed; use --max-diagnostics to change it.\n", hidden)
	}
	return nil
}

func (r *reporter) printDiffs(results []workspace.FileResult, sum *summary) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	for i := range results {
		res := &results[i]
		if res.Fix == nil || !res.Fix.Changed() {
			continue
		}
		patch, stat := fix.Diff(r.ws.Config().Rel(res.Path), res.Original, res.Fix.Text)
		if patch == "" {
			continue
		}
		sum.diffs++
		for _, line := range strings.SplitAfter(patch, "\n") {
			var err error
			switch {
			case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
				_, err = green.Fprint(r.out, line)
			case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
				_, err = red.Fprint(r.out, line)
			default:
				_, err = io.WriteString(r.out, line)
			}
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(r.out, "%d insertions(+), %d deletions(-)\n\n", stat.Added, stat.Removed)
	}
	return nil
}

func (r *reporter) printSummary(sum summary, elapsed time.Duration) {
	w := r.errOut
	noun := "files"
	if sum.files == 1 {
		noun = "file"
	}
	fmt.Fprintf(w, "Checked %d %s in %s.", sum.files, noun, formatElapsed(elapsed))
	switch {
	case r.flags.write:
		fmt.Fprintf(w, " Fixed %d %s.", sum.fixed, plural(sum.fixed, "file", "files"))
	case r.mode == modeFix:
		fmt.Fprintf(w, " %d %s can be fixed; run with --write to apply.", sum.diffs, plural(sum.diffs, "file", "files"))
	}
	fmt.Fprintln(w)
	if sum.Errors > 0 {
		color.New(color.FgRed).Fprintf(w, "Found %d %s.\n", sum.Errors, plural(sum.Errors, "error", "errors"))
	}
	if sum.Warnings > 0 {
		color.New(color.FgYellow).Fprintf(w, "Found %d %s.\n", sum.Warnings, plural(sum.Warnings, "warning", "warnings"))
	}
	if sum.Infos > 0 && r.minimum <= diag.SevInfo {
		fmt.Fprintf(w, "Found %d %s.\n", sum.Infos, plural(sum.Infos, "info", "infos"))
	}
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
