package config

import (
	"reflect"

	"weblint/internal/diag"
)

// Merge overlays src onto dst: scalars and arrays replace, objects merge
// member-wise, unset values never erase. dst shares no memory with src
// afterwards. Merge never fails.
func Merge(dst, src *Configuration) {
	if dst == nil || src == nil {
		return
	}
	mergeValue(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem())
}

// Clone returns a deep copy of c.
func Clone(c *Configuration) *Configuration {
	out := &Configuration{}
	Merge(out, c)
	return out
}

var (
	rulesType     = reflect.TypeFor[Rules]()
	ruleGroupType = reflect.TypeFor[RuleGroup]()
	ruleConfType  = reflect.TypeFor[RuleConfiguration]()
	ruleOptsType  = reflect.TypeFor[RuleOptions]()
)

func isUnset(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func mergeValue(dst, src reflect.Value) {
	if isUnset(src) {
		return
	}
	switch src.Kind() {
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(src.Type().Elem()))
		}
		mergeValue(dst.Elem(), src.Elem())
	case reflect.Slice:
		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			mergeValue(out.Index(i), src.Index(i))
		}
		dst.Set(out)
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(src.Type()))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
	case reflect.Struct:
		switch src.Type() {
		case rulesType:
			dst.Addr().Interface().(*Rules).MergeWith(src.Addr().Interface().(*Rules))
			return
		case ruleConfType:
			dst.Addr().Interface().(*RuleConfiguration).MergeWith(src.Addr().Interface().(*RuleConfiguration))
			return
		case ruleOptsType:
			dst.Addr().Interface().(*RuleOptions).MergeWith(src.Addr().Interface().(*RuleOptions))
			return
		case ruleGroupType:
			dst.Addr().Interface().(*RuleGroup).MergeWith(src.Addr().Interface().(*RuleGroup))
			return
		}
		for i := range src.NumField() {
			if dst.Type().Field(i).IsExported() {
				mergeValue(dst.Field(i), src.Field(i))
			}
		}
	default:
		dst.Set(src)
	}
}

func mergeFlag(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func (r *Rules) MergeWith(o *Rules) {
	if o == nil {
		return
	}
	mergeFlag(&r.Recommended, o.Recommended)
	mergeFlag(&r.All, o.All)
	for name, g := range o.Groups {
		if r.Groups == nil {
			r.Groups = make(map[string]*RuleGroup)
		}
		if r.Groups[name] == nil {
			r.Groups[name] = &RuleGroup{}
		}
		r.Groups[name].MergeWith(g)
	}
}

func (g *RuleGroup) MergeWith(o *RuleGroup) {
	if o == nil {
		return
	}
	mergeFlag(&g.Recommended, o.Recommended)
	mergeFlag(&g.All, o.All)
	for name, rc := range o.Rules {
		if g.Rules == nil {
			g.Rules = make(map[string]*RuleConfiguration)
		}
		if g.Rules[name] == nil {
			g.Rules[name] = &RuleConfiguration{}
		}
		g.Rules[name].MergeWith(rc)
	}
}

// MergeWith applies the rule-configuration merge: a plain level only
// replaces the level of an object form; two objects merge level, fix and
// options key-wise.
func (rc *RuleConfiguration) MergeWith(o *RuleConfiguration) {
	if o == nil {
		return
	}
	empty := rc.Level == "" && rc.Fix == nil && rc.Options == nil
	if o.Plain {
		if empty || rc.Plain {
			*rc = RuleConfiguration{Level: o.Level, Plain: true}
			return
		}
		rc.Level = o.Level
		return
	}
	rc.Level = o.Level
	rc.Plain = false
	if o.Fix != nil {
		fk := *o.Fix
		rc.Fix = &fk
	}
	if o.Options != nil {
		if rc.Options == nil {
			rc.Options = o.Options.Clone()
		} else {
			rc.Options.MergeWith(o.Options)
		}
	}
}

// ValidateMerged re-checks cross-layer invariants after merging. A rules
// node that ends up with both recommended and all set is reset; the
// diagnostic points at the latest contributing entry.
func ValidateMerged(cfg *Configuration, prov *Provenance) []diag.Diagnostic {
	var out []diag.Diagnostic
	check := func(r **Rules, q Query) {
		if *r == nil {
			return
		}
		if Bool((*r).Recommended, false) && Bool((*r).All, false) {
			out = append(out, recommendedAllDiagnostic(prov, q))
			*r = nil
			prov.DropUnder(q)
			return
		}
		for _, name := range (*r).SortedGroups() {
			g := (*r).Groups[name]
			if Bool(g.Recommended, false) && Bool(g.All, false) {
				gq := q.Field(name)
				out = append(out, recommendedAllDiagnostic(prov, gq))
				delete((*r).Groups, name)
				prov.DropUnder(gq)
			}
		}
	}
	if cfg.Linter != nil {
		check(&cfg.Linter.Rules, Query{Field("linter"), Field("rules")})
	}
	if cfg.Assist != nil {
		check(&cfg.Assist.Actions, Query{Field("assist"), Field("actions")})
	}
	return out
}

func recommendedAllDiagnostic(prov *Provenance, q Query) diag.Diagnostic {
	d := diag.NewError(diag.CatConfigInvalid, prov.latestRange(q), RecommendedAllMessage)
	return d.WithAdvice(diag.LogAdvice(diag.LogInfo, FallbackAdvice))
}
