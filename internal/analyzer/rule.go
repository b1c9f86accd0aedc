package analyzer

import (
	"fmt"
	"slices"

	"weblint/internal/diag"
	"weblint/internal/semantic"
	"weblint/internal/source"
	"weblint/internal/syntax"
	"weblint/internal/types"
)

// Query selects the elements a rule runs on. A kind matches a visited node
// of that kind or a token of that kind directly below a visited node.
type Query struct {
	Kinds []syntax.Kind
	// Semantic rules run in PhaseSemantic, after the model is complete.
	Semantic bool
}

// Ast matches the kinds in the syntax phase.
func Ast(kinds ...syntax.Kind) Query { return Query{Kinds: kinds} }

// Semantic matches the kinds once the semantic model is available.
func Semantic(kinds ...syntax.Kind) Query { return Query{Kinds: kinds, Semantic: true} }

// Union merges queries. The result is semantic if any part is.
func Union(qs ...Query) Query {
	var out Query
	for _, q := range qs {
		for _, k := range q.Kinds {
			if !slices.Contains(out.Kinds, k) {
				out.Kinds = append(out.Kinds, k)
			}
		}
		out.Semantic = out.Semantic || q.Semantic
	}
	return out
}

// Signal is the state a rule carries from Run to Diagnostic and Action.
type Signal any

type RuleNote struct {
	Range syntax.TextRange
	Msg   string
}

// RuleDiagnostic is what a rule reports. The driver turns it into a
// diag.Diagnostic with the category and severity of the rule.
type RuleDiagnostic struct {
	Span        syntax.TextRange
	Message     string
	Description string
	Notes       []RuleNote
	Advices     []diag.Advice
	Tags        diag.Tags
}

func NewRuleDiagnostic(span syntax.TextRange, msg string) *RuleDiagnostic {
	return &RuleDiagnostic{Span: span, Message: msg}
}

func (d *RuleDiagnostic) WithNote(r syntax.TextRange, msg string) *RuleDiagnostic {
	d.Notes = append(d.Notes, RuleNote{Range: r, Msg: msg})
	return d
}

// WithLog appends an informational log advice.
func (d *RuleDiagnostic) WithLog(text string) *RuleDiagnostic {
	d.Advices = append(d.Advices, diag.LogAdvice(diag.LogInfo, text))
	return d
}

func (d *RuleDiagnostic) WithAdvice(a ...diag.Advice) *RuleDiagnostic {
	d.Advices = append(d.Advices, a...)
	return d
}

func (d *RuleDiagnostic) WithTags(t diag.Tags) *RuleDiagnostic {
	d.Tags |= t
	return d
}

func (d *RuleDiagnostic) WithDescription(desc string) *RuleDiagnostic {
	d.Description = desc
	return d
}

// RuleAction is a code fix proposed by a rule.
type RuleAction struct {
	Message  string
	Mutation *syntax.BatchMutation
	// Kind defaults to QuickFix for lint rules and Source for assist rules.
	Kind ActionKind
	// Applicability overrides the one derived from the rule's fix kind. A
	// configured fix kind still wins.
	Applicability *Applicability
}

func NewRuleAction(msg string, m *syntax.BatchMutation) *RuleAction {
	return &RuleAction{Message: msg, Mutation: m, Kind: ActionDefault}
}

// Rule is the contract every lint rule and assist action implements. Rules
// are stateless values and must not mutate the context.
type Rule interface {
	Metadata() RuleMetadata
	Query() Query
	Run(ctx *RuleContext) (Signal, bool)
	Diagnostic(ctx *RuleContext, s Signal) *RuleDiagnostic
	Action(ctx *RuleContext, s Signal) *RuleAction
	// NewOptions returns a pointer to the default options, nil when the rule
	// takes none.
	NewOptions() any
}

// RuleContext is the read-only view a rule gets for one match.
type RuleContext struct {
	el            syntax.Element
	meta          *RuleMetadata
	options       any
	model         *semantic.Model
	types         *types.Resolver
	file          *source.File
	lang          syntax.Language
	severity      diag.Severity
	applicability Applicability
	tree          *syntax.Tree
}

// Node returns the matched node, or the parent of a matched token.
func (c *RuleContext) Node() *syntax.Node { return syntax.ElementNode(c.el) }

func (c *RuleContext) Element() syntax.Element { return c.el }

// Token returns the matched token, nil when the match is a node.
func (c *RuleContext) Token() *syntax.Token {
	t, _ := c.el.(*syntax.Token)
	return t
}

func (c *RuleContext) Metadata() *RuleMetadata            { return c.meta }
func (c *RuleContext) Options() any                       { return c.options }
func (c *RuleContext) Semantic() *semantic.Model          { return c.model }
func (c *RuleContext) Types() *types.Resolver             { return c.types }
func (c *RuleContext) File() *source.File                 { return c.file }
func (c *RuleContext) Language() syntax.Language          { return c.lang }
func (c *RuleContext) Severity() diag.Severity            { return c.severity }
func (c *RuleContext) Applicability() Applicability       { return c.applicability }
func (c *RuleContext) Tree() *syntax.Tree                 { return c.tree }
func (c *RuleContext) Root() *syntax.Node                 { return c.tree.Root() }
func (c *RuleContext) NewMutation() *syntax.BatchMutation { return syntax.NewBatchMutation(c.tree) }

// OptionsOf returns the rule options as *O, nil when the rule has none.
func OptionsOf[O any](ctx *RuleContext) *O {
	o, _ := ctx.options.(*O)
	return o
}

// NoOptions is the options type of rules that take none.
type NoOptions struct{}

// TypedRule adapts typed functions to Rule. S is the signal state and O
// the options struct.
type TypedRule[S, O any] struct {
	Meta           RuleMetadata
	On             Query
	RunFunc        func(ctx *RuleContext, opts *O) (S, bool)
	DiagnosticFunc func(ctx *RuleContext, s S) *RuleDiagnostic
	ActionFunc     func(ctx *RuleContext, s S, opts *O) *RuleAction
	// Defaults builds the default options. Rules without options leave it nil.
	Defaults func() *O
}

func (r *TypedRule[S, O]) Metadata() RuleMetadata { return r.Meta }

func (r *TypedRule[S, O]) Query() Query { return r.On }

func (r *TypedRule[S, O]) NewOptions() any {
	if r.Defaults == nil {
		return nil
	}
	return r.Defaults()
}

func (r *TypedRule[S, O]) options(ctx *RuleContext) *O {
	if o := OptionsOf[O](ctx); o != nil {
		return o
	}
	if r.Defaults != nil {
		return r.Defaults()
	}
	return new(O)
}

func (r *TypedRule[S, O]) Run(ctx *RuleContext) (Signal, bool) {
	s, ok := r.RunFunc(ctx, r.options(ctx))
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *TypedRule[S, O]) state(sig Signal) S {
	s, ok := sig.(S)
	if !ok {
		panic(fmt.Sprintf("%s: unexpected signal type %T", r.Meta.Key(), sig))
	}
	return s
}

func (r *TypedRule[S, O]) Diagnostic(ctx *RuleContext, sig Signal) *RuleDiagnostic {
	if r.DiagnosticFunc == nil {
		return nil
	}
	return r.DiagnosticFunc(ctx, r.state(sig))
}

func (r *TypedRule[S, O]) Action(ctx *RuleContext, sig Signal) *RuleAction {
	if r.ActionFunc == nil {
		return nil
	}
	return r.ActionFunc(ctx, r.state(sig), r.options(ctx))
}
