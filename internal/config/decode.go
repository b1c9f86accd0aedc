package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"golang.org/x/text/unicode/norm"

	"weblint/internal/diag"
	"weblint/internal/source"
)

// Deserializable is implemented by nodes that decode themselves. The return
// value reports whether the node was set; false leaves it at its default.
type Deserializable interface {
	DeserializeConfig(d *Decoder, v Value) bool
}

// Validator runs after a node decoded successfully. Returning false rejects
// the node: it is reset and its provenance dropped.
type Validator interface {
	ValidateConfig(d *Decoder, v Value) bool
}

// KeyedMap is implemented by map types that only accept known keys.
type KeyedMap interface {
	AllowedKeys() []string
}

// Value is a JSON value inside the document being decoded.
type Value struct {
	r        gjson.Result
	Query    Query
	Key      string
	keyStart int
	keyEnd   int
}

// Kind names the JSON type the way diagnostics spell it.
func (v Value) Kind() string {
	switch v.r.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	case gjson.JSON:
		if v.r.IsArray() {
			return "array"
		}
		return "object"
	}
	return "unknown"
}

func (v Value) IsObject() bool { return v.r.IsObject() }
func (v Value) IsArray() bool  { return v.r.IsArray() }
func (v Value) IsString() bool { return v.r.Type == gjson.String }
func (v Value) Str() string    { return v.r.Str }
func (v Value) Raw() string    { return v.r.Raw }

func (v Value) start() int { return v.r.Index }
func (v Value) end() int   { return v.r.Index + len(v.r.Raw) }

// Members yields object members in document order.
func (v Value) Members(yield func(Value) bool) {
	v.r.ForEach(func(key, val gjson.Result) bool {
		m := Value{
			r:        val,
			Query:    v.Query.Field(norm.NFC.String(key.Str)),
			Key:      key.Str,
			keyStart: key.Index,
			keyEnd:   key.Index + len(key.Raw),
		}
		return yield(m)
	})
}

// Elements yields array elements in order.
func (v Value) Elements(yield func(Value) bool) {
	i := 0
	v.r.ForEach(func(_, val gjson.Result) bool {
		el := Value{r: val, Query: v.Query.Index(i)}
		i++
		return yield(el)
	})
}

// Name returns the NFC-normalized member key.
func (v Value) Name() string {
	if len(v.Query) == 0 {
		return ""
	}
	return v.Query[len(v.Query)-1].FieldName()
}

// Decoder walks one JSON document into typed configuration values, recording
// provenance for every member it sets and reporting recoverable problems.
type Decoder struct {
	file     source.FileID
	base     int
	collapse bool
	source   Source
	reporter diag.Reporter
	prov     *Provenance
	catalog  RuleCatalog
}

// Span converts document offsets into a file span.
func (d *Decoder) Span(start, end int) source.Span {
	if d.collapse {
		b := u32(d.base)
		return source.Span{File: d.file, Start: b, End: b}
	}
	return source.Span{
		File:  d.file,
		Start: u32(d.base + start),
		End:   u32(d.base + end),
	}
}

// ValueSpan is the span of the whole value.
func (d *Decoder) ValueSpan(v Value) source.Span { return d.Span(v.start(), v.end()) }

// KeySpan is the span of the member key, or the value for array elements.
func (d *Decoder) KeySpan(v Value) source.Span {
	if v.keyEnd > v.keyStart {
		return d.Span(v.keyStart, v.keyEnd)
	}
	return d.ValueSpan(v)
}

func (d *Decoder) Catalog() RuleCatalog { return d.catalog }

func (d *Decoder) Report(x diag.Diagnostic) { d.reporter.Report(x) }

func (d *Decoder) record(v Value) {
	if d.prov == nil || len(v.Query) == 0 {
		return
	}
	d.prov.Add(ProvenanceEntry{
		Source:  d.source,
		Pointer: Pointer{Key: v.Key, KeyRange: d.KeySpan(v)},
		Range:   d.ValueSpan(v),
		Query:   v.Query,
	})
}

// TypeMismatch reports an unexpected JSON kind.
func (d *Decoder) TypeMismatch(v Value, expected string) {
	diag.ReportError(d.reporter, diag.CatConfigTypeMismatch, d.ValueSpan(v),
		fmt.Sprintf("Incorrect type, expected a %s, but received a %s.", expected, v.Kind())).Emit()
}

// UnknownKey reports a member name that the node does not accept.
func (d *Decoder) UnknownKey(v Value, allowed []string) {
	b := diag.ReportWarning(d.reporter, diag.CatConfigUnknownKey, d.KeySpan(v),
		fmt.Sprintf("Found an unknown key `%s`.", v.Key))
	if s, ok := Suggest(v.Name(), allowed); ok {
		b.WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Did you mean `%s`?", s)))
	}
	b.WithAdvice(diag.ListAdvice("Known keys:", allowed)).Emit()
}

// UnknownVariant reports a string outside an enum.
func (d *Decoder) UnknownVariant(v Value, allowed []string) {
	b := diag.ReportWarning(d.reporter, diag.CatConfigUnknownVariant, d.ValueSpan(v),
		fmt.Sprintf("Found an unknown value `%s`.", v.Str()))
	if s, ok := Suggest(v.Str(), allowed); ok {
		b.WithAdvice(diag.LogAdvice(diag.LogInfo, fmt.Sprintf("Did you mean `%s`?", s)))
	}
	b.WithAdvice(diag.ListAdvice("Accepted values:", allowed)).Emit()
}

// Decode decodes v into target, which must be a non-nil pointer.
func (d *Decoder) Decode(v Value, target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic("config: Decode target must be a non-nil pointer")
	}
	return d.decodeValue(v, rv.Elem(), "")
}

var (
	deserializableType = reflect.TypeFor[Deserializable]()
	validatorType      = reflect.TypeFor[Validator]()
	enumType           = reflect.TypeFor[Enum]()
	keyedMapType       = reflect.TypeFor[KeyedMap]()
)

// reflectValueOf returns the addressable value behind pointer p.
func reflectValueOf(p any) reflect.Value { return reflect.ValueOf(p).Elem() }

// decodeInnerTo decodes into *p without recording provenance.
func (d *Decoder) decodeInnerTo(v Value, p any) bool {
	return d.decodeInner(v, reflectValueOf(p), "")
}

// decodeValue fills rv (addressable) from v. bound is the raw `bound` tag of
// the enclosing field.
func (d *Decoder) decodeValue(v Value, rv reflect.Value, bound string) bool {
	ok := d.decodeInner(v, rv, bound)
	if ok && rv.CanAddr() && reflect.PointerTo(rv.Type()).Implements(validatorType) {
		ok = rv.Addr().Interface().(Validator).ValidateConfig(d, v)
	}
	if !ok {
		rv.SetZero()
		if d.prov != nil && len(v.Query) > 0 {
			d.prov.DropUnder(v.Query)
		}
		return false
	}
	d.record(v)
	return true
}

func (d *Decoder) decodeInner(v Value, rv reflect.Value, bound string) bool {
	t := rv.Type()
	if rv.CanAddr() && reflect.PointerTo(t).Implements(deserializableType) {
		return rv.Addr().Interface().(Deserializable).DeserializeConfig(d, v)
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := reflect.New(t.Elem())
		if !d.decodeInner(v, elem.Elem(), bound) {
			return false
		}
		if reflect.PointerTo(t.Elem()).Implements(validatorType) {
			if !elem.Interface().(Validator).ValidateConfig(d, v) {
				return false
			}
		}
		rv.Set(elem)
		return true

	case reflect.Bool:
		if v.r.Type != gjson.True && v.r.Type != gjson.False {
			d.TypeMismatch(v, "boolean")
			return false
		}
		rv.SetBool(v.r.Bool())
		return true

	case reflect.String:
		if !v.IsString() {
			d.TypeMismatch(v, "string")
			return false
		}
		if t.Implements(enumType) {
			variants := reflect.Zero(t).Interface().(Enum).Variants()
			found := false
			for _, vr := range variants {
				if vr == v.Str() {
					found = true
					break
				}
			}
			if !found {
				d.UnknownVariant(v, variants)
				return false
			}
		}
		rv.SetString(v.Str())
		return true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return d.decodeInteger(v, rv, bound)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			var items []string
			if !d.decodeStringList(v, &items) {
				return false
			}
			out := reflect.MakeSlice(t, 0, len(items))
			for _, it := range items {
				out = reflect.Append(out, reflect.ValueOf(it).Convert(t.Elem()))
			}
			rv.Set(out)
			return true
		}
		if !v.IsArray() {
			d.TypeMismatch(v, "array")
			return false
		}
		out := reflect.MakeSlice(t, 0, 4)
		v.Elements(func(el Value) bool {
			item := reflect.New(t.Elem()).Elem()
			d.decodeValue(el, item, "")
			out = reflect.Append(out, item)
			return true
		})
		rv.Set(out)
		return true

	case reflect.Map:
		return d.decodeMap(v, rv)

	case reflect.Struct:
		return d.decodeStruct(v, rv)
	}
	panic(fmt.Sprintf("config: unsupported field type %s", t))
}

// decodeStringList accepts an array of strings. Non-string elements are
// reported and skipped.
func (d *Decoder) decodeStringList(v Value, out *[]string) bool {
	if !v.IsArray() {
		d.TypeMismatch(v, "array")
		return false
	}
	items := make([]string, 0, 4)
	v.Elements(func(el Value) bool {
		if !el.IsString() {
			d.TypeMismatch(el, "string")
			return true
		}
		items = append(items, el.Str())
		return true
	})
	*out = items
	return true
}

func parseBound(tag string, t reflect.Type) (lo, hi float64) {
	switch t.Kind() {
	case reflect.Uint8:
		lo, hi = 0, math.MaxUint8
	case reflect.Uint16:
		lo, hi = 0, math.MaxUint16
	case reflect.Uint32:
		lo, hi = 0, math.MaxUint32
	case reflect.Uint, reflect.Uint64:
		lo, hi = 0, math.MaxUint64
	case reflect.Int8:
		lo, hi = math.MinInt8, math.MaxInt8
	case reflect.Int16:
		lo, hi = math.MinInt16, math.MaxInt16
	case reflect.Int32:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		lo, hi = math.MinInt64, math.MaxInt64
	}
	if tag == "" {
		return lo, hi
	}
	a, b, ok := strings.Cut(tag, ",")
	if !ok {
		return lo, hi
	}
	if x, err := strconv.ParseFloat(a, 64); err == nil {
		lo = x
	}
	if x, err := strconv.ParseFloat(b, 64); err == nil {
		hi = x
	}
	return lo, hi
}

func (d *Decoder) decodeInteger(v Value, rv reflect.Value, bound string) bool {
	if v.r.Type != gjson.Number {
		d.TypeMismatch(v, "number")
		return false
	}
	lo, hi := parseBound(bound, rv.Type())
	n := v.r.Num
	if n != math.Trunc(n) || strings.ContainsAny(v.Raw(), ".eE") {
		d.TypeMismatch(v, "integer")
		return false
	}
	if n < lo || n > hi {
		diag.ReportError(d.reporter, diag.CatConfigOutOfBound, d.ValueSpan(v),
			fmt.Sprintf("out of bound: must be in [%s, %s]", formatBound(lo), formatBound(hi))).Emit()
		return false
	}
	if rv.CanUint() {
		rv.SetUint(v.r.Uint())
	} else {
		rv.SetInt(v.r.Int())
	}
	return true
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (d *Decoder) decodeMap(v Value, rv reflect.Value) bool {
	t := rv.Type()
	if !v.IsObject() {
		d.TypeMismatch(v, "object")
		return false
	}
	var allowed []string
	if t.Implements(keyedMapType) {
		allowed = reflect.Zero(t).Interface().(KeyedMap).AllowedKeys()
	}
	out := reflect.MakeMap(t)
	v.Members(func(m Value) bool {
		name := m.Name()
		if allowed != nil && !contains(allowed, name) {
			d.UnknownKey(m, allowed)
			return true
		}
		item := reflect.New(t.Elem()).Elem()
		if d.decodeValue(m, item, "") {
			out.SetMapIndex(reflect.ValueOf(name).Convert(t.Key()), item)
		}
		return true
	})
	rv.Set(out)
	return true
}

type fieldInfo struct {
	index int
	name  string
	bound string
}

func structFields(t reflect.Type) []fieldInfo {
	out := make([]fieldInfo, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		out = append(out, fieldInfo{index: i, name: name, bound: f.Tag.Get("bound")})
	}
	return out
}

// FieldNames lists the accepted member names of a struct type.
func FieldNames(t reflect.Type) []string {
	fs := structFields(t)
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		if f.name != "$schema" {
			names = append(names, f.name)
		}
	}
	return names
}

func (d *Decoder) decodeStruct(v Value, rv reflect.Value) bool {
	if !v.IsObject() {
		d.TypeMismatch(v, "object")
		return false
	}
	fields := structFields(rv.Type())
	v.Members(func(m Value) bool {
		name := m.Name()
		for _, f := range fields {
			if f.name == name {
				d.decodeValue(m, rv.Field(f.index), f.bound)
				return true
			}
		}
		d.UnknownKey(m, FieldNames(rv.Type()))
		return true
	})
	return true
}

func u32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("config offset: %w", err))
	}
	return v
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// ParseOptions controls how a document is read.
type ParseOptions struct {
	AllowComments       bool
	AllowTrailingCommas bool
	Source              Source
	File                source.FileID
	Catalog             RuleCatalog
}

// ErrInvalidJSON is returned inside the configuration/parse diagnostic chain
// when the document is not valid JSON after comment stripping.
var ErrInvalidJSON = errors.New("invalid JSON")

// Parse decodes a configuration document. Recoverable problems become
// diagnostics; on a syntax error the returned configuration is empty.
func Parse(src []byte, opts ParseOptions) (*Configuration, *Provenance, []diag.Diagnostic) {
	cfg := &Configuration{}
	prov := NewProvenance()
	bag := diag.NewBag(0)
	root, ok := prepare(src, opts, bag)
	if !ok {
		return cfg, prov, bag.Items()
	}
	d := &Decoder{
		file:     opts.File,
		source:   opts.Source,
		reporter: bag,
		prov:     prov,
		catalog:  opts.Catalog,
	}
	d.decodeRoot(root, cfg)
	return cfg, prov, bag.Items()
}

// ParseSection decodes a configuration embedded at a JSON path of a larger
// document, as used for package.json#biome. Offsets stay relative to src.
func ParseSection(src []byte, path string, opts ParseOptions) (*Configuration, *Provenance, []diag.Diagnostic, bool) {
	cfg := &Configuration{}
	prov := NewProvenance()
	bag := diag.NewBag(0)
	rep := bag
	if _, ok := prepare(src, opts, rep); !ok {
		return cfg, prov, bag.Items(), false
	}
	res := gjson.GetBytes(jsonc.ToJSON(src), path)
	if !res.Exists() {
		return cfg, prov, bag.Items(), false
	}
	d := &Decoder{file: opts.File, source: opts.Source, reporter: rep, prov: prov, catalog: opts.Catalog}
	d.decodeRoot(Value{r: res}, cfg)
	return cfg, prov, bag.Items(), true
}

func (d *Decoder) decodeRoot(root Value, cfg *Configuration) {
	if !root.IsObject() {
		d.TypeMismatch(root, "object")
		return
	}
	rv := reflect.ValueOf(cfg).Elem()
	if !d.decodeStruct(root, rv) {
		rv.SetZero()
	}
}

// prepare strips comments and trailing commas, rejecting them when not
// allowed, and checks that the rest is valid JSON.
func prepare(src []byte, opts ParseOptions, rep diag.Reporter) (Value, bool) {
	clean := jsonc.ToJSON(src)
	comment, comma := scanExtensions(src)
	if comment >= 0 && !opts.AllowComments {
		at := u32(comment)
		diag.ReportError(rep, diag.CatConfigParse, source.Span{File: opts.File, Start: at, End: at + 2},
			"JSON standard does not allow comments.").
			WithAdvice(diag.LogAdvice(diag.LogInfo, "Use biome.jsonc or set json.parser.allowComments.")).
			Emit()
		return Value{}, false
	}
	if comma >= 0 && !opts.AllowTrailingCommas {
		at := u32(comma)
		diag.ReportError(rep, diag.CatConfigParse, source.Span{File: opts.File, Start: at, End: at + 1},
			"Expected a property but instead found a trailing comma.").
			WithAdvice(diag.LogAdvice(diag.LogInfo, "Use biome.jsonc or set json.parser.allowTrailingCommas.")).
			Emit()
		return Value{}, false
	}

	if !gjson.ValidBytes(clean) {
		off := 0
		var anyv any
		var se *json.SyntaxError
		if err := json.Unmarshal(clean, &anyv); errors.As(err, &se) {
			off = int(se.Offset)
		}
		at := u32(min(off, len(src)))
		diag.ReportError(rep, diag.CatConfigParse, source.Span{File: opts.File, Start: at, End: at},
			fmt.Sprintf("Configuration is not valid: %v.", ErrInvalidJSON)).Emit()
		return Value{}, false
	}

	s := string(clean)
	r := gjson.Parse(s)
	r.Index = strings.Index(s, r.Raw)
	return Value{r: r}, true
}

// scanExtensions returns the offset of the first comment and of the first
// trailing comma outside strings, -1 when absent.
func scanExtensions(src []byte) (comment, comma int) {
	comment, comma = -1, -1
	lastComma := -1
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"':
			lastComma = -1
			for i++; i < len(src) && src[i] != '"'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			if comment < 0 {
				comment = i
			}
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			if comment < 0 {
				comment = i
			}
			i += 2
			for i+1 < len(src) && (src[i] != '*' || src[i+1] != '/') {
				i++
			}
			i++
		case c == ',':
			lastComma = i
		case c == '}' || c == ']':
			if lastComma >= 0 && comma < 0 {
				comma = lastComma
			}
			lastComma = -1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			lastComma = -1
		}
	}
	return comment, comma
}
