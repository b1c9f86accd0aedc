package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"weblint/internal/diag"
	"weblint/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string        `json:"id"`
	ShortDescription *sarifMessage `json:"shortDescription,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Properties       map[string]any  `json:"properties,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	CharOffset  uint32 `json:"charOffset"`
	CharLength  uint32 `json:"charLength"`
}

func sarifLevel(s diag.Severity) string {
	switch {
	case s >= diag.SevError:
		return "error"
	case s == diag.SevWarning:
		return "warning"
	}
	return "note"
}

func sarifLoc(fs *source.FileSet, span source.Span, baseDir string) (sarifLocation, bool) {
	if fs == nil {
		return sarifLocation{}, false
	}
	f := fs.Get(span.File)
	if f == nil {
		return sarifLocation{}, false
	}
	start, end := fs.Resolve(span)
	return sarifLocation{PhysicalLocation: sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(displayPath(f, fs, PathModeRelative, baseDir))},
		Region: sarifRegion{
			StartLine: start.Line, StartColumn: start.Col,
			EndLine: end.Line, EndColumn: end.Col,
			CharOffset: span.Start, CharLength: span.End - span.Start,
		},
	}}, true
}

// buildSarif assembles a SARIF 2.1.0 log with a single run.
func buildSarif(diags []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) sarifLog {
	categories := make(map[string]string)
	for i := range diags {
		c := diags[i].Category
		categories[c.String()] = c.Title()
	}
	ids := make([]string, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	index := make(map[string]int, len(ids))
	rules := make([]sarifRule, len(ids))
	for i, id := range ids {
		index[id] = i
		rules[i] = sarifRule{ID: id}
		if title := categories[id]; title != "" {
			rules[i].ShortDescription = &sarifMessage{Text: title}
		}
	}

	name := meta.ToolName
	if name == "" {
		name = "weblint"
	}
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name: name, Version: meta.ToolVersion, InformationURI: meta.InformationURI, Rules: rules,
		}},
		Results: make([]sarifResult, 0, len(diags)),
	}
	failed := false
	for i := range diags {
		d := &diags[i]
		failed = failed || d.IsError()
		res := sarifResult{
			RuleID:    d.Category.String(),
			RuleIndex: index[d.Category.String()],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
		}
		if loc, ok := sarifLoc(fs, d.Primary, ""); ok {
			res.Locations = []sarifLocation{loc}
		}
		for j, n := range d.Notes {
			if loc, ok := sarifLoc(fs, n.Span, ""); ok {
				loc.ID = j + 1
				loc.Message = &sarifMessage{Text: n.Msg}
				res.RelatedLocations = append(res.RelatedLocations, loc)
			}
		}
		if names := d.Tags.Names(); len(names) > 0 || d.Source != "" {
			res.Properties = map[string]any{}
			if len(names) > 0 {
				res.Properties["tags"] = names
			}
			if d.Source != "" {
				res.Properties["source"] = d.Source
			}
		}
		run.Results = append(run.Results, res)
	}
	if meta.InvocationArgs != nil {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: !failed}}
	}
	return sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, meta SarifRunMeta) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildSarif(diags, fs, meta))
}
