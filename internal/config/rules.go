package config

import (
	"fmt"
	"maps"
	"slices"

	"weblint/internal/diag"
)

// CatalogKind separates lint rules (linter.rules) from assist actions
// (assist.actions).
type CatalogKind uint8

const (
	CatalogLint CatalogKind = iota
	CatalogAssist
)

// RuleCatalog lists the groups and rules the decoder accepts. The analyzer
// registry implements it; a nil catalog accepts every name.
type RuleCatalog interface {
	Groups(kind CatalogKind) []string
	Rules(kind CatalogKind, group string) []string
	// NewOptions returns a pointer to a fresh options value for the rule, or
	// nil when the rule takes no options.
	NewOptions(kind CatalogKind, group, rule string) any
}

// Rules is linter.rules or assist.actions.
type Rules struct {
	Recommended *bool
	All         *bool
	Groups      map[string]*RuleGroup
}

// RuleGroup is one group of Rules.
type RuleGroup struct {
	Recommended *bool
	All         *bool
	Rules       map[string]*RuleConfiguration
}

// RuleConfiguration is either a plain level or an object with level, fix
// and options.
type RuleConfiguration struct {
	Level   RuleLevel
	Fix     *FixKind
	Options *RuleOptions
	// Plain is set when the configuration was written as a bare string.
	Plain bool
}

// Group returns the named group or nil.
func (r *Rules) Group(name string) *RuleGroup {
	if r == nil {
		return nil
	}
	return r.Groups[name]
}

// Rule returns the configuration of group/name or nil.
func (r *Rules) Rule(group, name string) *RuleConfiguration {
	g := r.Group(group)
	if g == nil {
		return nil
	}
	return g.Rules[name]
}

// SortedGroups returns the configured group names in lexical order.
func (r *Rules) SortedGroups() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.Groups))
}

// SortedRules returns the configured rule names in lexical order.
func (g *RuleGroup) SortedRules() []string {
	if g == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(g.Rules))
}

func catalogKind(q Query) CatalogKind {
	if q.Contains("assist") {
		return CatalogAssist
	}
	return CatalogLint
}

func (d *Decoder) decodeFlag(m Value, dst **bool) {
	var b bool
	if d.decodeValue(m, reflectValueOf(&b), "") {
		*dst = &b
	}
}

func (r *Rules) DeserializeConfig(d *Decoder, v Value) bool {
	if !v.IsObject() {
		d.TypeMismatch(v, "object")
		return false
	}
	kind := catalogKind(v.Query)
	var groups []string
	if d.catalog != nil {
		groups = d.catalog.Groups(kind)
	}
	for m := range v.Members {
		switch name := m.Name(); name {
		case "recommended":
			d.decodeFlag(m, &r.Recommended)
		case "all":
			d.decodeFlag(m, &r.All)
		default:
			if groups != nil && !contains(groups, name) {
				d.UnknownKey(m, append([]string{"recommended", "all"}, groups...))
				continue
			}
			g := &RuleGroup{}
			if d.decodeValue(m, reflectValueOf(g), "") {
				if r.Groups == nil {
					r.Groups = make(map[string]*RuleGroup)
				}
				r.Groups[name] = g
			}
		}
	}
	return true
}

func (r *Rules) ValidateConfig(d *Decoder, v Value) bool {
	return validateRecommendedAll(d, v, r.Recommended, r.All)
}

func (g *RuleGroup) DeserializeConfig(d *Decoder, v Value) bool {
	if !v.IsObject() {
		d.TypeMismatch(v, "object")
		return false
	}
	kind := catalogKind(v.Query)
	group := v.Name()
	var rules []string
	if d.catalog != nil {
		rules = d.catalog.Rules(kind, group)
	}
	for m := range v.Members {
		switch name := m.Name(); name {
		case "recommended":
			d.decodeFlag(m, &g.Recommended)
		case "all":
			d.decodeFlag(m, &g.All)
		default:
			if rules != nil && !contains(rules, name) {
				d.UnknownKey(m, append([]string{"recommended", "all"}, rules...))
				continue
			}
			rc := &RuleConfiguration{}
			if d.decodeValue(m, reflectValueOf(rc), "") {
				if g.Rules == nil {
					g.Rules = make(map[string]*RuleConfiguration)
				}
				g.Rules[name] = rc
			}
		}
	}
	return true
}

func (g *RuleGroup) ValidateConfig(d *Decoder, v Value) bool {
	return validateRecommendedAll(d, v, g.Recommended, g.All)
}

// RecommendedAllMessage is reported when a rules node enables both presets.
const RecommendedAllMessage = "'recommended' and 'all' can't be both 'true'. You should choose only one of them."

// FallbackAdvice accompanies RecommendedAllMessage.
const FallbackAdvice = "Biome will fallback to its defaults for this section."

func validateRecommendedAll(d *Decoder, v Value, rec, all *bool) bool {
	if Bool(rec, false) && Bool(all, false) {
		diag.ReportError(d.reporter, diag.CatConfigInvalid, d.ValueSpan(v), RecommendedAllMessage).
			WithAdvice(diag.LogAdvice(diag.LogInfo, FallbackAdvice)).
			Emit()
		return false
	}
	return true
}

var ruleObjectKeys = []string{"level", "fix", "options"}

func (rc *RuleConfiguration) DeserializeConfig(d *Decoder, v Value) bool {
	if v.IsString() {
		var lvl RuleLevel
		if !d.decodeInnerTo(v, &lvl) {
			return false
		}
		*rc = RuleConfiguration{Level: lvl, Plain: true}
		return true
	}
	if !v.IsObject() {
		d.TypeMismatch(v, "string or object")
		return false
	}
	hasLevel := false
	for m := range v.Members {
		switch m.Name() {
		case "level":
			var lvl RuleLevel
			if d.decodeValue(m, reflectValueOf(&lvl), "") {
				rc.Level = lvl
				hasLevel = true
			} else {
				return false
			}
		case "fix":
			var fk FixKind
			if d.decodeValue(m, reflectValueOf(&fk), "") {
				rc.Fix = &fk
			}
		case "options":
			opts := &RuleOptions{}
			if d.decodeValue(m, reflectValueOf(opts), "") {
				rc.Options = opts
				d.checkOptions(v, m, opts)
			}
		default:
			d.UnknownKey(m, ruleObjectKeys)
		}
	}
	if !hasLevel {
		diag.ReportError(d.reporter, diag.CatConfigInvalid, d.ValueSpan(v), "The key `level` is required.").Emit()
		return false
	}
	return true
}

// checkOptions decodes options against the rule's options type so unknown
// keys are reported with their real location.
func (d *Decoder) checkOptions(rule, m Value, opts *RuleOptions) {
	if d.catalog == nil || len(rule.Query) < 2 {
		return
	}
	name := rule.Name()
	group := rule.Query[len(rule.Query)-2].FieldName()
	target := d.catalog.NewOptions(catalogKind(rule.Query), group, name)
	if target == nil {
		diag.ReportWarning(d.reporter, diag.CatConfigUnknownKey, d.KeySpan(m),
			fmt.Sprintf("The rule `%s` doesn't accept options.", name)).Emit()
		return
	}
	sub := *d
	sub.prov = nil
	sub.decodeInner(m, reflectValueOf(target), "")
}

// Severity helpers.

// IsPlain reports whether merging should only touch the level.
func (rc *RuleConfiguration) IsPlain() bool { return rc != nil && rc.Plain }

// Enabled reports whether the configuration turns the rule on.
func (rc *RuleConfiguration) Enabled() bool { return rc != nil && rc.Level.Enabled() }

// Disabled reports an explicit "off".
func (rc *RuleConfiguration) Disabled() bool { return rc != nil && rc.Level == LevelOff }
