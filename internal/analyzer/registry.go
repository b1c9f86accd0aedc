package analyzer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"weblint/internal/config"
)

// ErrUnknownRule reports a selector or key that names no registered rule.
var ErrUnknownRule = errors.New("unknown rule")

// LintGroups lists the groups of linter.rules in configuration order.
var LintGroups = []string{
	"a11y", "complexity", "correctness", "nursery",
	"performance", "security", "style", "suspicious",
}

// AssistGroups lists the groups of assist.actions.
var AssistGroups = []string{"source"}

func groupsOf(cat RuleCategory) []string {
	if cat == CategoryAssist {
		return AssistGroups
	}
	return LintGroups
}

type ruleKey struct {
	cat   RuleCategory
	group string
	name  string
}

type presetSets struct {
	all         RuleSet
	recommended RuleSet
}

// Registry is the immutable, ordered set of known rules. Rule indexes follow
// (category, group, name) order, so iterating a RuleSet yields dispatch
// order. Preset sets are computed once at construction.
type Registry struct {
	rules []Rule
	meta  []RuleMetadata
	index map[ruleKey]int

	lint    presetSets
	assist  presetSets
	nursery RuleSet
	groups  map[string]presetSets // "lint/correctness"
	domains [numDomains]presetSets
}

// NewRegistry sorts rules and precomputes the presets. It panics on
// duplicate keys or groups outside LintGroups/AssistGroups.
func NewRegistry(rules ...Rule) *Registry {
	type entry struct {
		rule Rule
		meta RuleMetadata
	}
	entries := make([]entry, len(rules))
	for i, r := range rules {
		entries[i] = entry{rule: r, meta: r.Metadata()}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if a.meta.Category != b.meta.Category {
			return int(a.meta.Category) - int(b.meta.Category)
		}
		if c := strings.Compare(a.meta.Group, b.meta.Group); c != 0 {
			return c
		}
		return strings.Compare(a.meta.Name, b.meta.Name)
	})

	reg := &Registry{
		rules:  make([]Rule, len(entries)),
		meta:   make([]RuleMetadata, len(entries)),
		index:  make(map[ruleKey]int, len(entries)),
		groups: make(map[string]presetSets),
	}
	for i, e := range entries {
		m := e.meta
		if !slices.Contains(groupsOf(m.Category), m.Group) {
			panic(fmt.Sprintf("analyzer: rule %s has unknown group %q", m.Key(), m.Group))
		}
		k := ruleKey{m.Category, m.Group, m.Name}
		if _, dup := reg.index[k]; dup {
			panic(fmt.Sprintf("analyzer: duplicate rule %s/%s", m.Category, m.Key()))
		}
		reg.rules[i], reg.meta[i], reg.index[k] = e.rule, m, i

		preset := &reg.lint
		if m.Category == CategoryAssist {
			preset = &reg.assist
		}
		preset.all.Add(i)
		gk := m.Category.String() + "/" + m.Group
		g := reg.groups[gk]
		g.all.Add(i)
		if m.Recommended {
			preset.recommended.Add(i)
			g.recommended.Add(i)
		}
		reg.groups[gk] = g
		if m.Group == "nursery" {
			reg.nursery.Add(i)
		}
		for _, d := range m.Domains.Items() {
			reg.domains[d].all.Add(i)
			if m.Recommended {
				reg.domains[d].recommended.Add(i)
			}
		}
	}
	return reg
}

func (r *Registry) Len() int { return len(r.rules) }

func (r *Registry) Rule(i int) Rule { return r.rules[i] }

func (r *Registry) Metadata(i int) *RuleMetadata { return &r.meta[i] }

// Index finds a rule by identity.
func (r *Registry) Index(cat RuleCategory, group, name string) (int, bool) {
	i, ok := r.index[ruleKey{cat, group, name}]
	return i, ok
}

// Lookup accepts "lint/group/name", "assist/group/name" or "group/name"
// (lint).
func (r *Registry) Lookup(key string) (int, bool) {
	sel, err := ParseRuleSelector(key)
	if err != nil || sel.Rule == "" {
		return 0, false
	}
	return r.Index(sel.Category, sel.Group, sel.Rule)
}

// Recommended returns the recommended rules of a category.
func (r *Registry) Recommended(cat RuleCategory) RuleSet {
	return r.presets(cat).recommended.Clone()
}

// All returns every rule of a category.
func (r *Registry) All(cat RuleCategory) RuleSet {
	return r.presets(cat).all.Clone()
}

func (r *Registry) presets(cat RuleCategory) *presetSets {
	if cat == CategoryAssist {
		return &r.assist
	}
	return &r.lint
}

// Nursery returns the rules of the nursery group.
func (r *Registry) Nursery() RuleSet { return r.nursery.Clone() }

// Group returns every rule and the recommended rules of one group.
func (r *Registry) Group(cat RuleCategory, group string) (all, recommended RuleSet) {
	g := r.groups[cat.String()+"/"+group]
	return g.all.Clone(), g.recommended.Clone()
}

// Domain returns every rule and the recommended rules tagged with d.
func (r *Registry) Domain(d Domain) (all, recommended RuleSet) {
	if d >= numDomains {
		return RuleSet{}, RuleSet{}
	}
	return r.domains[d].all.Clone(), r.domains[d].recommended.Clone()
}

// RuleNames lists the rule names of one group in order.
func (r *Registry) RuleNames(cat RuleCategory, group string) []string {
	var out []string
	for i := range r.meta {
		if r.meta[i].Category == cat && r.meta[i].Group == group {
			out = append(out, r.meta[i].Name)
		}
	}
	return out
}

func catalogCategory(kind config.CatalogKind) RuleCategory {
	if kind == config.CatalogAssist {
		return CategoryAssist
	}
	return CategoryLint
}

// Groups implements config.RuleCatalog.
func (r *Registry) Groups(kind config.CatalogKind) []string {
	return slices.Clone(groupsOf(catalogCategory(kind)))
}

// Rules implements config.RuleCatalog. Known groups without rules return an
// empty, non-nil list.
func (r *Registry) Rules(kind config.CatalogKind, group string) []string {
	cat := catalogCategory(kind)
	if !slices.Contains(groupsOf(cat), group) {
		return nil
	}
	names := r.RuleNames(cat, group)
	if names == nil {
		names = []string{}
	}
	return names
}

// NewOptions implements config.RuleCatalog.
func (r *Registry) NewOptions(kind config.CatalogKind, group, rule string) any {
	i, ok := r.Index(catalogCategory(kind), group, rule)
	if !ok {
		return nil
	}
	return r.rules[i].NewOptions()
}

var _ config.RuleCatalog = (*Registry)(nil)
