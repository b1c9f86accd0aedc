package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"weblint/internal/analyzer"
	"weblint/internal/rules"
)

func newRulesCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules",
		Args:  cobra.NoArgs,
		RunE:  runRules,
	}
	cmd.Flags().String("format", "text", "output format (text|json|toml)")
	cmd.Flags().String("group", "", "only rules of this group")
	cmd.Flags().String("language", "", "only rules of this language family (js, jsx, ts, css, json, ...)")
	cmd.Flags().Bool("recommended", false, "only recommended rules")
	return cmd
}

type rulesFilter struct {
	group       string
	language    string
	recommended bool
}

func (f rulesFilter) keep(r *analyzer.MetadataRecord) bool {
	switch {
	case f.group != "" && r.Group != f.group:
		return false
	case f.language != "" && r.Language != f.language:
		return false
	case f.recommended && !r.Recommended:
		return false
	}
	return true
}

func runRules(cmd *cobra.Command, _ []string) error {
	var f rulesFilter
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.group, err = flags.GetString("group"); err != nil {
		return fmt.Errorf("failed to get group flag: %w", err)
	}
	if f.language, err = flags.GetString("language"); err != nil {
		return fmt.Errorf("failed to get language flag: %w", err)
	}
	if f.recommended, err = flags.GetBool("recommended"); err != nil {
		return fmt.Errorf("failed to get recommended flag: %w", err)
	}

	var recs []analyzer.MetadataRecord
	for _, r := range rules.Registry().Records() {
		if f.keep(&r) {
			recs = append(recs, r)
		}
	}
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		if recs == nil {
			recs = []analyzer.MetadataRecord{}
		}
		return analyzer.WriteRecordsJSON(out, recs)
	case "toml":
		return analyzer.WriteRecordsTOML(out, recs)
	case "text":
		return writeRulesTable(out, recs)
	}
	return &exitError{code: exitFatal, err: fmt.Errorf("unsupported format %q (must be text, json or toml)", format)}
}

func writeRulesTable(out io.Writer, recs []analyzer.MetadataRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tLANGUAGE\tSEVERITY\tFIX\tRECOMMENDED")
	for _, r := range recs {
		rec := ""
		if r.Recommended {
			rec = "yes"
		}
		fmt.Fprintf(tw, "%s/%s/%s\t%s\t%s\t%s\t%s\n", r.Category, r.Group, r.Name, r.Language, r.Severity, r.FixKind, rec)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d rules\n", len(recs))
	return err
}
