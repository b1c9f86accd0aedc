package analyzer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"weblint/internal/diag"
	"weblint/internal/semantic"
	"weblint/internal/source"
	"weblint/internal/syntax"
	"weblint/internal/trace"
	"weblint/internal/types"
)

// Phase is one walk over the tree.
type Phase uint8

const (
	// PhaseSyntax runs syntax rules and builds the semantic model.
	PhaseSyntax Phase = iota
	// PhaseSemantic runs rules that need the semantic model.
	PhaseSemantic
	numPhases
)

func (p Phase) String() string {
	if p == PhaseSemantic {
		return "semantic"
	}
	return "syntax"
}

const limitMessage = "diagnostic limit reached"

type spanFunc func(syntax.TextRange) source.Span

// Input is one analysis request.
type Input struct {
	Tree     *syntax.Tree
	File     *source.File
	Settings *Settings
	// Semantic and Types are built on demand when nil.
	Semantic *semantic.Model
	Types    *types.Resolver
	// Limit caps the emitted rule diagnostics; 0 means unlimited.
	Limit int
	// Unsafe keeps MaybeIncorrect actions in Result.Actions.
	Unsafe bool
	// Filter, when set, restricts the run to the rule indexes it accepts.
	Filter func(rule int) bool
	// Fs resolves relative imports while the model is built.
	Fs afero.Fs
	// Suppressions adds a "suppress rule" action per lint diagnostic.
	Suppressions      bool
	SuppressionReason string
}

// Result is the outcome of Analyze. Diagnostics hold rule diagnostics in
// tree pre-order (ties broken by group then rule name), followed by
// suppression and internal diagnostics.
type Result struct {
	Diagnostics  []diag.Diagnostic
	Actions      []Action
	Aborted      bool
	LimitReached bool
	// Semantic is the model the run used.
	Semantic *semantic.Model
}

// HasErrors reports a diagnostic of severity error or above.
func (r *Result) HasErrors() bool {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].IsError() {
			return true
		}
	}
	return false
}

// visitor receives the walk events of one phase.
type visitor func(ev syntax.WalkEvent)

// visitorTable dispatches walk events. Visitors registered without kinds
// see every node.
type visitorTable struct {
	lang   syntax.Language
	byKind map[syntax.Kind][]visitor
	every  []visitor
}

func newVisitorTable(lang syntax.Language) *visitorTable {
	return &visitorTable{lang: lang, byKind: make(map[syntax.Kind][]visitor)}
}

// register adds v when the file language is in langs.
func (t *visitorTable) register(langs syntax.LanguageSet, kinds []syntax.Kind, v visitor) {
	if !langs.Has(t.lang) {
		return
	}
	if len(kinds) == 0 {
		t.every = append(t.every, v)
		return
	}
	for _, k := range kinds {
		t.byKind[k] = append(t.byKind[k], v)
	}
}

func (t *visitorTable) empty() bool { return len(t.every) == 0 && len(t.byKind) == 0 }

func (t *visitorTable) dispatch(ev syntax.WalkEvent) {
	for _, v := range t.every {
		v(ev)
	}
	for _, v := range t.byKind[ev.Node.Kind()] {
		v(ev)
	}
}

const anyLanguage = syntax.LanguageSet(0xffff)

// match is a query hit waiting for its rule to run.
type match struct {
	rule int
	el   syntax.Element
}

type analysis struct {
	ctx   context.Context
	in    Input
	reg   *Registry
	span  spanFunc
	model *semantic.Model
	types *types.Resolver
	supp  *suppressions

	queries  [numPhases]map[syntax.Kind][]int
	matches  []match
	diags    []diag.Diagnostic
	internal []diag.Diagnostic
	actions  []Action
	// позиции для сортировки, параллельно diags и actions
	diagKeys   []emitKey
	actionKeys []emitKey
	emitted  int
	limitHit bool
	aborted  bool
}

// Analyze walks the tree once per phase and runs every enabled rule whose
// query matches. Rule panics become internal/ruleError diagnostics; the
// run stops early when ctx is cancelled and reports Aborted.
func Analyze(ctx context.Context, in Input) Result {
	a := newAnalysis(ctx, in)
	a.run()
	res := a.result()
	log.Debug().
		Str("component", "analyzer").
		Str("path", a.path()).
		Int("diagnostics", len(res.Diagnostics)).
		Int("actions", len(res.Actions)).
		Bool("aborted", res.Aborted).
		Msg("analyzed")
	return res
}

func newAnalysis(ctx context.Context, in Input) *analysis {
	a := &analysis{
		ctx:   ctx,
		in:    in,
		reg:   in.Settings.Registry,
		model: in.Semantic,
		types: in.Types,
	}
	var file source.FileID
	if in.File != nil {
		file = in.File.ID
	}
	a.span = func(r syntax.TextRange) source.Span {
		return source.Span{File: file, Start: r.Start, End: r.End}
	}
	for p := range a.queries {
		a.queries[p] = make(map[syntax.Kind][]int)
	}
	for _, i := range in.Settings.Enabled.Slice() {
		if in.Filter != nil && !in.Filter(i) {
			continue
		}
		q := a.reg.Rule(i).Query()
		p := PhaseSyntax
		if q.Semantic {
			p = PhaseSemantic
		}
		for _, k := range q.Kinds {
			a.queries[p][k] = append(a.queries[p][k], i)
		}
	}
	return a
}

func (a *analysis) path() string {
	if a.in.File == nil {
		return ""
	}
	return a.in.File.Path
}

func (a *analysis) run() {
	tree := a.in.Tree
	lang := tree.Language()
	tracer := trace.FromContext(a.ctx)
	parent := trace.ParentID(a.ctx)

	sp := trace.Begin(tracer, trace.ScopePhase, "analyze/"+PhaseSyntax.String(), parent)
	table := newVisitorTable(lang)
	var builder *semantic.Builder
	if a.model == nil {
		builder = semantic.NewBuilder(tree, semantic.Options{
			Globals: a.in.Settings.Globals,
			Fs:      a.in.Fs,
			Path:    a.path(),
		})
		table.register(syntax.FamilyJS, nil, func(ev syntax.WalkEvent) {
			if ev.Kind == syntax.Enter {
				builder.Enter(ev.Node)
			} else {
				builder.Leave(ev.Node)
			}
		})
	}
	if len(a.queries[PhaseSyntax]) > 0 {
		table.register(anyLanguage, nil, a.queryVisitor(PhaseSyntax))
	}
	a.walk(table)
	if builder != nil {
		a.model = builder.Finish()
	}
	a.supp = parseSuppressions(tree, a.model.Comments(), a.reg, a.span)
	a.process(PhaseSyntax)
	sp.End(strconv.Itoa(len(a.diags)))
	if a.aborted || len(a.queries[PhaseSemantic]) == 0 {
		return
	}

	sp = trace.Begin(tracer, trace.ScopePhase, "analyze/"+PhaseSemantic.String(), parent)
	defer func() { sp.End(strconv.Itoa(len(a.diags))) }()
	if a.types == nil {
		a.types = types.NewResolver(a.model)
	}
	table = newVisitorTable(lang)
	table.register(anyLanguage, nil, a.queryVisitor(PhaseSemantic))
	a.walk(table)
	a.process(PhaseSemantic)
}

// walk runs one pre-order pass. Cancellation is polled per node.
func (a *analysis) walk(t *visitorTable) {
	if a.aborted || t.empty() {
		return
	}
	for ev := range a.in.Tree.Root().Preorder() {
		if ev.Kind == syntax.Enter && a.ctx.Err() != nil {
			a.aborted = true
			return
		}
		t.dispatch(ev)
	}
}

// queryVisitor records a match for every rule whose query names the kind
// of the entered node or of one of its direct tokens.
func (a *analysis) queryVisitor(p Phase) visitor {
	table := a.queries[p]
	return func(ev syntax.WalkEvent) {
		if ev.Kind != syntax.Enter {
			return
		}
		n := ev.Node
		for _, r := range table[n.Kind()] {
			a.matches = append(a.matches, match{rule: r, el: n})
		}
		for _, c := range n.Children() {
			if tok, ok := c.(*syntax.Token); ok {
				for _, r := range table[tok.Kind()] {
					a.matches = append(a.matches, match{rule: r, el: tok})
				}
			}
		}
	}
}

// process runs the rules of the recorded matches in source pre-order.
func (a *analysis) process(p Phase) {
	ms := a.matches
	a.matches = nil
	if a.aborted {
		return
	}
	slices.SortStableFunc(ms, func(x, y match) int {
		rx, ry := x.el.Range(), y.el.Range()
		if rx.Start != ry.Start {
			return cmp.Compare(rx.Start, ry.Start)
		}
		return cmp.Compare(ry.End, rx.End)
	})
	for _, m := range ms {
		if a.ctx.Err() != nil {
			a.aborted = true
			return
		}
		if a.limitHit {
			return
		}
		a.dispatch(m, p)
	}
}

func (a *analysis) dispatch(m match, p Phase) {
	rule := a.reg.Rule(m.rule)
	meta := a.reg.Metadata(m.rule)
	rs := a.in.Settings.Rule(m.rule)
	rc := &RuleContext{
		el:            m.el,
		meta:          meta,
		options:       rs.Options,
		file:          a.in.File,
		lang:          a.in.Tree.Language(),
		severity:      rs.Severity,
		applicability: a.applicability(meta, rs, nil),
		tree:          a.in.Tree,
	}
	if p == PhaseSemantic {
		rc.model, rc.types = a.model, a.types
	}

	var (
		sig Signal
		ok  bool
	)
	if !a.guard(meta, "run", m.el, func() { sig, ok = rule.Run(rc) }) || !ok {
		return
	}
	var rd *RuleDiagnostic
	if !a.guard(meta, "diagnostic", m.el, func() { rd = rule.Diagnostic(rc, sig) }) {
		return
	}
	var ra *RuleAction
	if !a.guard(meta, "action", m.el, func() { ra = rule.Action(rc, sig) }) {
		ra = nil
	}
	a.emit(m.rule, rs, rd, ra)
}

// guard runs f and turns a panic into an internal diagnostic.
func (a *analysis) guard(meta *RuleMetadata, stage string, el syntax.Element, f func()) (ok bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ok = false
		log.Error().
			Str("component", "analyzer").
			Str("rule", meta.Key()).
			Str("stage", stage).
			Str("path", a.path()).
			Interface("panic", r).
			Msg("rule panicked")
		msg := fmt.Sprintf("The rule %s panicked during %s: %v", meta.Key(), stage, r)
		a.internal = append(a.internal, diag.NewInternal(diag.CatRuleError, a.span(el.Range()), msg, meta.Key(), excerpt(el)))
	}()
	f()
	return true
}

func excerpt(el syntax.Element) string {
	s := el.Text()
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}

func (a *analysis) emit(i int, rs *RuleSettings, rd *RuleDiagnostic, ra *RuleAction) {
	meta := a.reg.Metadata(i)
	if ra != nil && (ra.Mutation == nil || ra.Mutation.Len() == 0) {
		ra = nil
	}
	var at syntax.TextRange
	switch {
	case rd != nil:
		at = rd.Span
	case ra != nil:
		at = ra.Mutation.Span()
	default:
		return
	}
	// a suppressed diagnostic takes its action with it
	if a.supp.suppress(meta.DiagCategory(), at.Start) {
		return
	}
	key := emitKey{start: at.Start, end: at.End, rule: i, seq: len(a.diagKeys) + len(a.actionKeys)}
	defer func(from int) {
		for range len(a.actions) - from {
			a.actionKeys = append(a.actionKeys, key)
		}
	}(len(a.actions))

	di := -1
	if rd != nil {
		if a.in.Limit > 0 && a.emitted >= a.in.Limit {
			a.limitHit = true
			return
		}
		a.emitted++
		di = len(a.diags)
		a.diags = append(a.diags, a.toDiagnostic(meta, rs, rd))
		a.diagKeys = append(a.diagKeys, key)
	}
	if ra != nil {
		a.addAction(i, meta, rs, ra, di)
	}
	if di >= 0 && a.in.Suppressions && meta.Category == CategoryLint {
		a.addSuppressionAction(i, meta, di)
	}
}

func (a *analysis) toDiagnostic(meta *RuleMetadata, rs *RuleSettings, rd *RuleDiagnostic) diag.Diagnostic {
	d := diag.New(rs.Severity, meta.DiagCategory(), a.span(rd.Span), rd.Message)
	d.Description = rd.Description
	d.Rule = meta.Key()
	if len(meta.Sources) > 0 {
		d.Source = meta.Sources[0].String()
	}
	for _, n := range rd.Notes {
		d = d.WithNote(a.span(n.Range), n.Msg)
	}
	d.Advices = append(d.Advices, rd.Advices...)
	d.Tags |= rd.Tags
	if meta.IsDeprecated() {
		d.Tags |= diag.TagDeprecated
		d.Advices = append(d.Advices, diag.LogAdvice(diag.LogWarn, "This rule is deprecated: "+meta.Deprecated))
	}
	return d
}

// applicability derives the action safety: metadata fix kind, then the
// rule's own choice, then the configured fix kind.
func (a *analysis) applicability(meta *RuleMetadata, rs *RuleSettings, ra *RuleAction) Applicability {
	app := applicabilityOf(meta.Fix)
	if ra != nil && ra.Applicability != nil {
		app = *ra.Applicability
	}
	if rs.Fix != nil {
		app = applicabilityOf(*rs.Fix)
	}
	return app
}

func (a *analysis) addAction(i int, meta *RuleMetadata, rs *RuleSettings, ra *RuleAction, di int) {
	fix := meta.Fix
	if rs.Fix != nil {
		fix = *rs.Fix
	}
	if fix == FixNone {
		return
	}
	src := a.in.Tree.Source()
	after, err := ra.Mutation.Commit()
	if err != nil {
		msg := fmt.Sprintf("The rule %s produced an invalid fix: %v", meta.Key(), err)
		a.internal = append(a.internal, diag.NewInternal(diag.CatRuleError, a.span(ra.Mutation.Span()), msg, meta.Key(), ""))
		return
	}
	app := a.applicability(meta, rs, ra)
	act := Action{
		Applicability: app,
		Category:      actionCategory(meta, ra.Kind),
		Group:         meta.Group,
		Rule:          meta.Name,
		Message:       ra.Message,
		Mutation:      ra.Mutation,
		Range:         ra.Mutation.Span(),
		RuleIndex:     i,
		Diagnostic:    di,
	}
	if di >= 0 {
		label := "Safe fix: "
		if app == MaybeIncorrect {
			label = "Unsafe fix: "
		}
		before, changed := affectedLines(src, after, act.Range)
		d := &a.diags[di]
		d.Advices = append(d.Advices, diag.LogAdvice(diag.LogInfo, label+ra.Message), diag.DiffAdvice(before, changed))
		d.Tags |= diag.TagFixable
	}
	if app == Always || a.in.Unsafe {
		a.actions = append(a.actions, act)
	}
}

func actionCategory(meta *RuleMetadata, kind ActionKind) ActionCategory {
	switch {
	case kind == ActionRefactor:
		return ActionCategory{Kind: ActionRefactor, Name: meta.Group + "." + meta.Name}
	case kind == ActionSource || meta.Category == CategoryAssist:
		return ActionCategory{Kind: ActionSource, Name: meta.Name}
	}
	return ActionCategory{Kind: ActionQuickFix, Name: meta.Group + "." + meta.Name}
}

// affectedLines returns the whole lines touched by r before and after the
// edit. Text outside r is identical in both versions.
func affectedLines(before, after string, r syntax.TextRange) (string, string) {
	start := strings.LastIndexByte(before[:r.Start], '\n') + 1
	end := len(before)
	if i := strings.IndexByte(before[r.End:], '\n'); i >= 0 {
		end = int(r.End) + i
	}
	suffix := len(before) - end
	return before[start:end], after[start : len(after)-suffix]
}

// addSuppressionAction offers a biome-ignore comment on the line above the
// diagnostic, keeping its indentation.
func (a *analysis) addSuppressionAction(i int, meta *RuleMetadata, di int) {
	src := a.in.Tree.Source()
	off := int(a.diags[di].Primary.Start)
	lineStart := strings.LastIndexByte(src[:off], '\n') + 1
	indent := lineStart
	for indent < len(src) && (src[indent] == ' ' || src[indent] == '\t') {
		indent++
	}
	reason := a.in.SuppressionReason
	if reason == "" {
		reason = "<explanation>"
	}
	text := src[lineStart:indent] + suppressionComment(a.in.Tree.Language(), meta.DiagCategory(), reason) + "\n"
	at := uint32(lineStart)
	m := syntax.NewBatchMutation(a.in.Tree)
	m.InsertAt(at, text)
	a.actions = append(a.actions, Action{
		Applicability: MaybeIncorrect,
		Category:      ActionCategory{Kind: ActionSuppression, Name: meta.Group + "." + meta.Name},
		Group:         meta.Group,
		Rule:          meta.Name,
		Message:       "Suppress rule " + string(meta.DiagCategory()) + " for this line.",
		Mutation:      m,
		Range:         syntax.TextRange{Start: at, End: at},
		RuleIndex:     i,
		Diagnostic:    di,
	})
}

// emitKey orders emitted diagnostics and actions: by start, wider range
// first, then registry index (group, rule name), then emission order.
type emitKey struct {
	start, end uint32
	rule, seq  int
}

func (k emitKey) compare(o emitKey) int {
	return cmp.Or(
		cmp.Compare(k.start, o.start),
		cmp.Compare(o.end, k.end),
		cmp.Compare(k.rule, o.rule),
		cmp.Compare(k.seq, o.seq),
	)
}

// sortedOrder returns the indexes of keys in emitKey order.
func sortedOrder(keys []emitKey) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(x, y int) int { return keys[x].compare(keys[y]) })
	return idx
}

// reorder merges the output of both phases into tree pre-order and
// remaps Action.Diagnostic.
func (a *analysis) reorder() {
	moved := make([]int, len(a.diags))
	diags := make([]diag.Diagnostic, 0, len(a.diags))
	for to, from := range sortedOrder(a.diagKeys) {
		diags = append(diags, a.diags[from])
		moved[from] = to
	}
	actions := make([]Action, 0, len(a.actions))
	for _, from := range sortedOrder(a.actionKeys) {
		act := a.actions[from]
		if act.Diagnostic >= 0 {
			act.Diagnostic = moved[act.Diagnostic]
		}
		actions = append(actions, act)
	}
	a.diags, a.actions = diags, actions
}

func (a *analysis) result() Result {
	a.reorder()
	diags := a.diags
	if a.supp != nil {
		diags = append(diags, a.supp.diags...)
		if !a.aborted {
			diags = append(diags, a.supp.unused(a.span)...)
		}
	}
	diags = append(diags, a.internal...)
	if a.limitHit {
		diags = append(diags, diag.NewWarning(diag.CatLimitReached, a.span(syntax.TextRange{}), limitMessage).
			WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Only the first %d diagnostics were reported.", a.in.Limit))))
	}
	return Result{
		Diagnostics:  diags,
		Actions:      a.actions,
		Aborted:      a.aborted,
		LimitReached: a.limitHit,
		Semantic:     a.model,
	}
}
