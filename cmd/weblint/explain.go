package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"weblint/internal/analyzer"
	"weblint/internal/config"
	"weblint/internal/rules"
)

func newExplainCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <rule>",
		Short: "Show the documentation of a rule",
		Long: `Show the metadata of a rule. The rule may be written as
"lint/group/name", "group/name" or just "name".`,
		Args: cobra.ExactArgs(1),
		RunE: runExplain,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	reg := rules.Registry()
	i, ok := findRule(reg, args[0])
	if !ok {
		msg := fmt.Sprintf("unknown rule %q", args[0])
		if s, found := config.Suggest(ruleName(args[0]), allRuleNames(reg)); found {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		return &exitError{code: exitFatal, err: errors.New(msg)}
	}
	meta := reg.Metadata(i)
	switch strings.ToLower(format) {
	case "json":
		return analyzer.WriteRecordsJSON(cmd.OutOrStdout(), []analyzer.MetadataRecord{meta.Record()})
	case "pretty":
		printRule(cmd.OutOrStdout(), meta)
		return nil
	}
	return &exitError{code: exitFatal, err: fmt.Errorf("unsupported format %q (must be pretty or json)", format)}
}

// findRule accepts a full key or, failing that, a unique rule name.
func findRule(reg *analyzer.Registry, key string) (int, bool) {
	if i, ok := reg.Lookup(key); ok {
		return i, true
	}
	if strings.Contains(key, "/") {
		return 0, false
	}
	found, n := 0, 0
	for i := range reg.Len() {
		if reg.Metadata(i).Name == key {
			found = i
			n++
		}
	}
	return found, n == 1
}

func ruleName(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func allRuleNames(reg *analyzer.Registry) []string {
	names := make([]string, 0, reg.Len())
	for i := range reg.Len() {
		names = append(names, reg.Metadata(i).Name)
	}
	return names
}

func printRule(w io.Writer, m *analyzer.RuleMetadata) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	bold.Fprintln(w, m.DiagCategory())
	if m.Docs != "" {
		fmt.Fprintf(w, "\n  %s\n\n", m.Docs)
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(w, "  %s %s\n", faint.Sprintf("%-12s", label), value)
	}
	row("language", m.Language)
	row("recommended", fmt.Sprint(m.Recommended))
	row("severity", m.DefaultSeverity().String())
	row("fix", m.Fix.String())
	row("since", m.Version)
	if names := m.Domains.Names(); len(names) > 0 {
		row("domains", strings.Join(names, ", "))
	}
	for _, s := range m.Sources {
		row("source", fmt.Sprintf("%s (%s)", s, s.Relationship))
	}
	if m.Deprecated != "" {
		color.New(color.FgYellow).Fprintf(w, "\n  deprecated: %s\n", m.Deprecated)
	}
}
