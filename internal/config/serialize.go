package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Serialize writes cfg as canonical JSON: struct fields in declaration
// order, map keys sorted, unset values omitted, two-space indentation.
// Parsing the output yields an equal configuration.
func Serialize(cfg *Configuration) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("serialize configuration: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func writeValue(buf *bytes.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer:
		return writeValue(buf, v.Elem())
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.String:
		writeString(buf, v.String())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Slice:
		buf.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case reflect.Map:
		keys := v.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		slices.Sort(names)
		buf.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, name)
			buf.WriteByte(':')
			if err := writeValue(buf, v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case reflect.Struct:
		switch v.Type() {
		case rulesType:
			r := v.Addr().Interface().(*Rules)
			return writeRules(buf, r.Recommended, r.All, r.SortedGroups(), func(name string) error {
				return writeValue(buf, reflect.ValueOf(r.Groups[name]))
			})
		case ruleGroupType:
			g := v.Addr().Interface().(*RuleGroup)
			return writeRules(buf, g.Recommended, g.All, g.SortedRules(), func(name string) error {
				return writeValue(buf, reflect.ValueOf(g.Rules[name]))
			})
		case ruleConfType:
			return writeRuleConfiguration(buf, v.Addr().Interface().(*RuleConfiguration))
		case ruleOptsType:
			buf.WriteString(v.Addr().Interface().(*RuleOptions).Raw)
			return nil
		}
		buf.WriteByte('{')
		first := true
		for _, f := range structFields(v.Type()) {
			fv := v.Field(f.index)
			if isUnset(fv) {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeString(buf, f.name)
			buf.WriteByte(':')
			if err := writeValue(buf, fv); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("serialize configuration: unsupported kind %s", v.Kind())
	}
	return nil
}

func writeRules(buf *bytes.Buffer, rec, all *bool, names []string, each func(string) error) error {
	buf.WriteByte('{')
	first := true
	sep := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	if rec != nil {
		sep()
		buf.WriteString(`"recommended":` + strconv.FormatBool(*rec))
	}
	if all != nil {
		sep()
		buf.WriteString(`"all":` + strconv.FormatBool(*all))
	}
	for _, name := range names {
		sep()
		writeString(buf, name)
		buf.WriteByte(':')
		if err := each(name); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeRuleConfiguration(buf *bytes.Buffer, rc *RuleConfiguration) error {
	if rc.Plain {
		writeString(buf, string(rc.Level))
		return nil
	}
	buf.WriteString(`{"level":`)
	writeString(buf, string(rc.Level))
	if rc.Fix != nil {
		buf.WriteString(`,"fix":`)
		writeString(buf, string(*rc.Fix))
	}
	if rc.Options != nil && rc.Options.Raw != "" {
		buf.WriteString(`,"options":`)
		buf.WriteString(rc.Options.Raw)
	}
	buf.WriteByte('}')
	return nil
}
