package analyzer

import "weblint/internal/syntax"

// Applicability tells whether an action may be applied without review.
type Applicability uint8

const (
	Always Applicability = iota
	MaybeIncorrect
)

func (a Applicability) String() string {
	if a == MaybeIncorrect {
		return "maybeIncorrect"
	}
	return "always"
}

func applicabilityOf(k FixKind) Applicability {
	if k == FixUnsafe {
		return MaybeIncorrect
	}
	return Always
}

type ActionKind uint8

const (
	// ActionDefault picks QuickFix or Source from the rule category.
	ActionDefault ActionKind = iota
	ActionQuickFix
	ActionRefactor
	ActionSource
	ActionSuppression
)

var actionKindNames = [...]string{"", "quickfix", "refactor", "source", "quickfix.suppressRule"}

func (k ActionKind) String() string {
	if int(k) < len(actionKindNames) {
		return actionKindNames[k]
	}
	return "unknown"
}

// ActionCategory renders as "quickfix.correctness.noVar" or
// "source.organizeImports".
type ActionCategory struct {
	Kind ActionKind
	Name string
}

func (c ActionCategory) String() string {
	if c.Name == "" {
		return c.Kind.String()
	}
	return c.Kind.String() + "." + c.Name
}

// Action is a code fix ready to be applied.
type Action struct {
	Applicability Applicability
	Category      ActionCategory
	Group         string
	Rule          string
	Message       string
	Mutation      *syntax.BatchMutation
	// Range covers every edit of Mutation.
	Range syntax.TextRange
	// RuleIndex is the registry index of the rule.
	RuleIndex int
	// Diagnostic indexes Result.Diagnostics, -1 when the action has none.
	Diagnostic int
}

// Key returns "group/rule".
func (a *Action) Key() string { return a.Group + "/" + a.Rule }

// IsSuppression reports the "suppress rule" quick fix.
func (a *Action) IsSuppression() bool { return a.Category.Kind == ActionSuppression }
