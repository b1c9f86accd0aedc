package analyzer

import (
	"weblint/internal/diag"
	"weblint/internal/syntax"
)

// RuleCategory is the first segment of a rule's diagnostic category.
type RuleCategory uint8

const (
	CategoryLint RuleCategory = iota
	CategoryAssist
	CategorySyntax
	CategoryAction
	CategoryTransformation
)

var categoryNames = [...]string{
	CategoryLint:           "lint",
	CategoryAssist:         "assist",
	CategorySyntax:         "syntax",
	CategoryAction:         "action",
	CategoryTransformation: "transformation",
}

func (c RuleCategory) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// FixKind declares whether a rule's action is safe to apply automatically.
type FixKind uint8

const (
	FixNone FixKind = iota
	FixSafe
	FixUnsafe
)

func (k FixKind) String() string {
	switch k {
	case FixSafe:
		return "safe"
	case FixUnsafe:
		return "unsafe"
	}
	return "none"
}

// Relationship tells how closely a rule follows the one it is credited to.
type Relationship uint8

const (
	SameLogic Relationship = iota
	Inspired
)

func (r Relationship) String() string {
	if r == Inspired {
		return "inspired"
	}
	return "same"
}

// RuleSource credits a rule of another tool, e.g. {"eslint", "no-unused-vars"}.
type RuleSource struct {
	Tool         string
	ID           string
	Relationship Relationship
}

func (s RuleSource) String() string { return s.Tool + "/" + s.ID }

// RuleMetadata is the static description of a rule.
type RuleMetadata struct {
	Version  string
	Name     string
	Group    string
	Category RuleCategory
	// Language is a family tag: js, jsx, ts, css, json, graphql, html.
	Language    string
	Recommended bool
	// Severity overrides the group default when set, see DefaultSeverity.
	Severity *diag.Severity
	Fix      FixKind
	Sources  []RuleSource
	Domains  DomainSet
	// Deprecated holds the reason when the rule is deprecated.
	Deprecated string
	Docs       string
}

// Sev returns a pointer for RuleMetadata.Severity.
func Sev(s diag.Severity) *diag.Severity { return &s }

// Key returns "group/name".
func (m *RuleMetadata) Key() string { return m.Group + "/" + m.Name }

// DiagCategory returns the category of the rule's diagnostics.
func (m *RuleMetadata) DiagCategory() diag.Category {
	if m.Category == CategoryAssist {
		return diag.AssistCategory(m.Group, m.Name)
	}
	return diag.Category(m.Category.String() + "/" + m.Group + "/" + m.Name)
}

// Languages returns the set of languages the rule applies to.
func (m *RuleMetadata) Languages() syntax.LanguageSet {
	set, _ := syntax.ParseFamily(m.Language)
	return set
}

// DefaultSeverity is the severity "on" resolves to. Nursery and style
// rules default to info, other recommended rules to error and the rest to
// warning.
func (m *RuleMetadata) DefaultSeverity() diag.Severity {
	if m.Severity != nil {
		return *m.Severity
	}
	switch {
	case m.Category == CategoryAssist:
		return diag.SevInfo
	case m.Group == "nursery" || m.Group == "style":
		return diag.SevInfo
	case m.Recommended:
		return diag.SevError
	}
	return diag.SevWarning
}

// IsDeprecated reports whether the rule carries a deprecation reason.
func (m *RuleMetadata) IsDeprecated() bool { return m.Deprecated != "" }
