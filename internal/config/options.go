package config

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"weblint/internal/diag"
	"weblint/internal/source"
)

// RuleOptions holds a rule's options object as raw JSON. It is decoded into
// the rule's options type when settings are resolved.
type RuleOptions struct {
	Raw string
	// Span locates Raw in its configuration file. After a key-wise merge
	// Merged is set and Span only points at the latest contributor.
	Span   source.Span
	Merged bool
}

func (o *RuleOptions) DeserializeConfig(d *Decoder, v Value) bool {
	if !v.IsObject() {
		d.TypeMismatch(v, "object")
		return false
	}
	o.Raw = v.Raw()
	o.Span = d.ValueSpan(v)
	return true
}

// Keys lists the top-level option names in document order.
func (o *RuleOptions) Keys() []string {
	if o == nil {
		return nil
	}
	var keys []string
	gjson.Parse(o.Raw).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.Str)
		return true
	})
	return keys
}

// Get returns the raw JSON of one top-level option.
func (o *RuleOptions) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	r := gjson.Get(o.Raw, escapePath(key))
	return r.Raw, r.Exists()
}

// MergeWith overlays other's top-level keys onto o. Nested objects are
// replaced wholesale, like arrays.
func (o *RuleOptions) MergeWith(other *RuleOptions) {
	if other == nil {
		return
	}
	if o.Raw == "" {
		*o = *other
		return
	}
	out := o.Raw
	gjson.Parse(other.Raw).ForEach(func(k, v gjson.Result) bool {
		if next, err := sjson.SetRaw(out, escapePath(k.Str), v.Raw); err == nil {
			out = next
		}
		return true
	})
	o.Raw = out
	o.Span = other.Span
	o.Merged = true
}

func (o *RuleOptions) Clone() *RuleOptions {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// escapePath protects gjson/sjson path metacharacters inside a single key.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DecodeOptions decodes raw options into target, a pointer to the rule's
// options struct already holding its defaults. Keys missing from raw keep
// those defaults; unknown keys are reported as warnings.
func DecodeOptions(raw *RuleOptions, target any, q Query) []diag.Diagnostic {
	if raw == nil || raw.Raw == "" || target == nil {
		return nil
	}
	bag := diag.NewBag(0)
	d := &Decoder{
		file:     raw.Span.File,
		base:     int(raw.Span.Start),
		collapse: raw.Merged,
		reporter: bag,
	}
	v := Value{r: gjson.Parse(raw.Raw), Query: q}
	d.decodeInner(v, reflectValueOf(target), "")
	return bag.Items()
}
