package analyzer

import (
	"slices"

	"weblint/internal/config"
	"weblint/internal/diag"
	"weblint/internal/syntax"
)

// Environment carries the inputs of rule resolution that do not come from
// the configuration file.
type Environment struct {
	// Domains are detected from the project manifest.
	Domains DomainSet
	// Unstable enables recommended nursery rules.
	Unstable bool
	// Only replaces the enabled set; Skip subtracts from it.
	Only []RuleSelector
	Skip []RuleSelector
}

// RuleSettings is the runtime configuration of one enabled rule.
type RuleSettings struct {
	Severity diag.Severity
	// Fix is the configured fix kind, nil when the metadata default applies.
	Fix     *FixKind
	Options any
	// Explicit is set when the rule is named in the configuration.
	Explicit bool
}

// Settings is the resolved rule filter set of one file.
type Settings struct {
	Registry *Registry
	Language syntax.Language
	Enabled  RuleSet
	// Rules is indexed by registry index; only enabled entries are filled.
	Rules      []RuleSettings
	Globals    []string
	JsxRuntime config.JsxRuntime
	// Domains are the active domains.
	Domains DomainSet
	// Diagnostics come from decoding rule options. Workspace adds the
	// errors of the merged per-file configuration.
	Diagnostics []diag.Diagnostic
}

// Rule returns the settings of rule i.
func (s *Settings) Rule(i int) *RuleSettings { return &s.Rules[i] }

func (s *Settings) IsEnabled(i int) bool { return s.Enabled.Has(i) }

// ResolveSettings computes the enabled rules and their severity and options
// for a file in lang. cfg is the configuration already resolved for the
// file's path, with matching overrides merged in.
func ResolveSettings(reg *Registry, cfg *config.Configuration, lang syntax.Language, env Environment) *Settings {
	if cfg == nil {
		cfg = &config.Configuration{}
	}
	s := &Settings{
		Registry:   reg,
		Language:   lang,
		Rules:      make([]RuleSettings, reg.Len()),
		JsxRuntime: config.JsxTransparent,
	}
	if cfg.JavaScript != nil && cfg.JavaScript.JsxRuntime != nil {
		s.JsxRuntime = *cfg.JavaScript.JsxRuntime
	}
	r := resolver{reg: reg, env: env, s: s, explicit: make(map[int]bool)}

	lint := r.presets(CategoryLint, cfg.LinterRules())
	r.domains(cfg.DomainModes(), &lint)
	r.explicitRules(CategoryLint, cfg.LinterRules(), &lint)
	assist := r.presets(CategoryAssist, cfg.AssistActions())
	r.explicitRules(CategoryAssist, cfg.AssistActions(), &assist)

	enabled := lint
	enabled.UnionWith(assist)
	for _, i := range enabled.Slice() {
		m := reg.Metadata(i)
		if !m.Languages().Has(lang) {
			enabled.Remove(i)
			continue
		}
		if !m.Domains.Empty() && !m.Domains.Intersects(s.Domains) && !r.explicit[i] {
			enabled.Remove(i)
		}
	}

	if len(env.Only) > 0 {
		var only RuleSet
		for _, sel := range env.Only {
			if set, err := sel.Resolve(reg); err == nil {
				only.UnionWith(set)
			}
		}
		for _, i := range only.Slice() {
			if !reg.Metadata(i).Languages().Has(lang) {
				only.Remove(i)
			}
		}
		enabled = only
	}
	for _, sel := range env.Skip {
		if set, err := sel.Resolve(reg); err == nil {
			enabled.SubtractWith(set)
		}
	}

	if !cfg.LinterEnabled() || !languageLinterEnabled(cfg, lang) {
		enabled.SubtractWith(reg.All(CategoryLint))
	}
	if !cfg.AssistEnabled() {
		enabled.SubtractWith(reg.All(CategoryAssist))
	}
	s.Enabled = enabled

	for _, i := range enabled.Slice() {
		r.settle(i, cfg)
	}

	globals := slices.Clone(cfg.Globals())
	for _, d := range s.Domains.Items() {
		globals = append(globals, d.Globals()...)
	}
	slices.Sort(globals)
	s.Globals = slices.Compact(globals)
	return s
}

type resolver struct {
	reg      *Registry
	env      Environment
	s        *Settings
	explicit map[int]bool
}

// presets applies the recommended and all flags, globally then per group.
func (r *resolver) presets(cat RuleCategory, rules *config.Rules) RuleSet {
	var enabled RuleSet
	nursery := r.reg.Nursery()
	if rules == nil || config.Bool(rules.Recommended, true) {
		enabled.UnionWith(r.reg.Recommended(cat))
		if !r.env.Unstable {
			enabled.SubtractWith(nursery)
		}
	}
	if rules != nil && config.Bool(rules.All, false) {
		all := r.reg.All(cat)
		all.SubtractWith(nursery)
		enabled.UnionWith(all)
	}
	if rules == nil {
		return enabled
	}
	for _, name := range rules.SortedGroups() {
		g := rules.Groups[name]
		if g == nil {
			continue
		}
		all, rec := r.reg.Group(cat, name)
		if name == "nursery" && !r.env.Unstable {
			rec = RuleSet{}
		}
		if g.Recommended != nil {
			if *g.Recommended {
				enabled.UnionWith(rec)
			} else {
				enabled.SubtractWith(rec)
			}
		}
		if g.All != nil {
			if *g.All {
				enabled.UnionWith(all)
			} else {
				enabled.SubtractWith(all)
			}
		}
	}
	return enabled
}

// domains activates linter.domains and the domains detected from the
// manifest. A configured mode wins over detection.
func (r *resolver) domains(modes config.Domains, enabled *RuleSet) {
	for d := Domain(0); d < numDomains; d++ {
		mode, ok := modes[d.String()]
		if !ok {
			if !r.env.Domains.Has(d) {
				continue
			}
			mode = config.DomainRecommended
		}
		all, rec := r.reg.Domain(d)
		switch mode {
		case config.DomainAll:
			enabled.UnionWith(all)
		case config.DomainRecommended:
			if !r.env.Unstable {
				rec.SubtractWith(r.reg.Nursery())
			}
			enabled.UnionWith(rec)
		default:
			continue
		}
		r.s.Domains = r.s.Domains.With(d)
	}
}

func (r *resolver) explicitRules(cat RuleCategory, rules *config.Rules, enabled *RuleSet) {
	if rules == nil {
		return
	}
	for _, g := range rules.SortedGroups() {
		group := rules.Groups[g]
		for _, name := range group.SortedRules() {
			i, ok := r.reg.Index(cat, g, name)
			if !ok {
				continue
			}
			rc := group.Rules[name]
			switch {
			case rc.Disabled():
				enabled.Remove(i)
			case rc.Enabled():
				enabled.Add(i)
				r.explicit[i] = true
			}
		}
	}
}

// settle fills severity, fix kind and options of an enabled rule.
func (r *resolver) settle(i int, cfg *config.Configuration) {
	m := r.reg.Metadata(i)
	rs := &r.s.Rules[i]
	rs.Severity = m.DefaultSeverity()
	rs.Explicit = r.explicit[i]

	var (
		rc    *config.RuleConfiguration
		query config.Query
	)
	if m.Category == CategoryAssist {
		rc = cfg.AssistActions().Rule(m.Group, m.Name)
		query = config.Query{config.Field("assist"), config.Field("actions")}
	} else {
		rc = cfg.LinterRules().Rule(m.Group, m.Name)
		query = config.Query{config.Field("linter"), config.Field("rules")}
	}
	query = query.Field(m.Group).Field(m.Name).Field("options")

	if rc != nil {
		switch rc.Level {
		case config.LevelInfo:
			rs.Severity = diag.SevInfo
		case config.LevelWarn:
			rs.Severity = diag.SevWarning
		case config.LevelError:
			rs.Severity = diag.SevError
		}
		if rc.Fix != nil {
			k := fixKindOf(*rc.Fix)
			rs.Fix = &k
		}
	}
	rs.Options = r.reg.Rule(i).NewOptions()
	if rs.Options != nil && rc != nil && rc.Options != nil {
		r.s.Diagnostics = append(r.s.Diagnostics, config.DecodeOptions(rc.Options, rs.Options, query)...)
	}
}

func fixKindOf(k config.FixKind) FixKind {
	switch k {
	case config.FixSafe:
		return FixSafe
	case config.FixUnsafe:
		return FixUnsafe
	}
	return FixNone
}

func languageLinterEnabled(cfg *config.Configuration, lang syntax.Language) bool {
	var l *config.LanguageLinter
	switch lang {
	case syntax.LangJavaScript, syntax.LangJSX:
		if cfg.JavaScript != nil {
			l = cfg.JavaScript.Linter
		}
	case syntax.LangTypeScript, syntax.LangTSX:
		if cfg.TypeScript != nil {
			l = cfg.TypeScript.Linter
		}
		// typescript.linter falls back to javascript.linter
		if l == nil && cfg.JavaScript != nil {
			l = cfg.JavaScript.Linter
		}
	case syntax.LangJSON:
		if cfg.Json != nil {
			l = cfg.Json.Linter
		}
	case syntax.LangCSS:
		if cfg.Css != nil {
			l = cfg.Css.Linter
		}
	case syntax.LangGraphQL:
		if cfg.Graphql != nil {
			l = cfg.Graphql.Linter
		}
	case syntax.LangHTML:
		if cfg.Html != nil {
			l = cfg.Html.Linter
		}
	}
	return l == nil || config.Bool(l.Enabled, true)
}
