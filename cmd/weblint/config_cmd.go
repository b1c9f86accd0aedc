package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"weblint/internal/config"
	"weblint/internal/diagfmt"
	"weblint/internal/source"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	printCmd := &cobra.Command{
		Use:   "print [file]",
		Short: "Print the configuration that applies to a file (default: the project)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigPrint(cmd, args)
		},
	}
	explainCmd := &cobra.Command{
		Use:   "explain <query> [file]",
		Short: "Show which layer set a configuration value",
		Long: `Show the configuration layer, file and position that produced a value.
The query is a dotted path such as "linter.rules.style.useConst".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigExplain(cmd, args)
		},
	}
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the path of the discovered configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConfigPath(cmd)
		},
	}
	cmd.AddCommand(printCmd, explainCmd, pathCmd)
	return cmd
}

// loadForInspection loads the configuration and reports its diagnostics
// on stderr.
func (a *app) loadForInspection(cmd *cobra.Command) (*config.Loaded, *source.FileSet, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	files := source.NewFileSetWithBase(wd)
	loaded, err := a.loadConfig(files)
	if err != nil {
		return nil, nil, &exitError{code: exitFatal, err: err}
	}
	if len(loaded.Diagnostics) > 0 {
		err := diagfmt.Pretty(cmd.ErrOrStderr(), loaded.Diagnostics, files, diagfmt.PrettyOpts{
			Color:       a.useColor(cmd.ErrOrStderr()),
			Context:     1,
			PathMode:    diagfmt.PathModeRelative,
			BaseDir:     wd,
			ShowAdvices: true,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return loaded, files, nil
}

func (a *app) runConfigPrint(cmd *cobra.Command, args []string) error {
	loaded, _, err := a.loadForInspection(cmd)
	if err != nil {
		return err
	}
	cfg := loaded.Base
	if len(args) == 1 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		cfg = loaded.Resolve(path).Config
	}
	data, err := config.Serialize(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func (a *app) runConfigExplain(cmd *cobra.Command, args []string) error {
	loaded, files, err := a.loadForInspection(cmd)
	if err != nil {
		return err
	}
	prov := loaded.Provenance
	if len(args) == 2 {
		path, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		prov = loaded.Resolve(path).Provenance
	}
	q, err := config.ParseQuery(args[0])
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	out := cmd.OutOrStdout()
	if e, ok := prov.Lookup(q); ok {
		printProvenance(out, files, &e)
		return nil
	}
	under := prov.Under(q)
	if len(under) == 0 {
		fmt.Fprintf(out, "%s is not set; the default applies\n", q)
		return nil
	}
	for i := range under {
		printProvenance(out, files, &under[i])
	}
	return nil
}

func printProvenance(w io.Writer, files *source.FileSet, e *config.ProvenanceEntry) {
	fmt.Fprintf(w, "%s\n", e.Query)
	fmt.Fprintf(w, "  source: %s (merge order %d)\n", e.Source, e.MergeOrder)
	f := files.Get(e.Range.File)
	if f == nil {
		return
	}
	start, _ := files.Resolve(e.Range)
	fmt.Fprintf(w, "  at:     %s:%d:%d\n", f.DisplayPath("relative", files.BaseDir()), start.Line, start.Col)
	if int(e.Range.End) <= len(f.Content) && e.Range.Start <= e.Range.End {
		fmt.Fprintf(w, "  value:  %s\n", f.Content[e.Range.Start:e.Range.End])
	}
}

func (a *app) runConfigPath(cmd *cobra.Command) error {
	if a.g.configPath != "" {
		fmt.Fprintln(cmd.OutOrStdout(), a.g.configPath)
		return nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, err := config.NewLoader(a.fs, nil, nil).Discover(wd)
	if errors.Is(err, config.ErrNoConfig) {
		return &exitError{code: exitFatal, err: fmt.Errorf("no configuration file found from %s", wd)}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
