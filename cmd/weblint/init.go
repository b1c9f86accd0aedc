package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"weblint/internal/config"
)

const schemaURL = "https://biomejs.dev/schemas/2.0.0/schema.json"

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a biome.json with the recommended setup",
		Long: `Create a biome.json in [dir] (default: the current directory) that
enables the recommended rules. The directory is created if needed.
An existing configuration file is never overwritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, args)
		},
	}
	cmd.Flags().Bool("jsonc", false, "write biome.jsonc instead of biome.json")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	jsonc, err := cmd.Flags().GetBool("jsonc")
	if err != nil {
		return fmt.Errorf("failed to get jsonc flag: %w", err)
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := a.fs.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := a.fs.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	for _, name := range []string{config.FileBiomeJSON, config.FileBiomeJSONC} {
		p := filepath.Join(target, name)
		if ok, _ := afero.Exists(a.fs, p); ok {
			return &exitError{code: exitFatal, err: fmt.Errorf("already initialized: %s exists", p)}
		}
	}

	data, err := config.Serialize(starterConfig())
	if err != nil {
		return err
	}
	name := config.FileBiomeJSON
	if jsonc {
		name = config.FileBiomeJSONC
	}
	path := filepath.Join(target, name)
	if err := afero.WriteFile(a.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	rel := path
	if wd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(wd, path); err == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", rel)
	return nil
}

func starterConfig() *config.Configuration {
	schema := schemaURL
	root, enabled, recommended := true, true, true
	useIgnore := true
	git := config.VcsClientKind("git")
	return &config.Configuration{
		Schema: &schema,
		Root:   &root,
		Vcs: &config.VcsConfiguration{
			Enabled:       &enabled,
			ClientKind:    &git,
			UseIgnoreFile: &useIgnore,
		},
		Linter: &config.LinterConfiguration{
			Enabled: &enabled,
			Rules:   &config.Rules{Recommended: &recommended},
		},
	}
}
