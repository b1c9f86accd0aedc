package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Configuration {
	t.Helper()
	cfg, _, diags := parse(t, src)
	require.Empty(t, diags)
	return cfg
}

func TestMergeScalarsArraysObjects(t *testing.T) {
	dst := mustParse(t, `{ "formatter": { "indentWidth": 4, "lineWidth": 100 }, "files": { "includes": ["a/**", "b/**"] } }`)
	src := mustParse(t, `{ "formatter": { "indentWidth": 2 }, "files": { "includes": ["c/**"] } }`)
	Merge(dst, src)

	assert.Equal(t, uint8(2), *dst.Formatter.IndentWidth)
	assert.Equal(t, uint16(100), *dst.Formatter.LineWidth, "unset values never erase")
	assert.Equal(t, []string{"c/**"}, dst.Files.Includes, "arrays replace")

	// dst no longer aliases src
	*src.Formatter.IndentWidth = 8
	src.Files.Includes[0] = "zzz"
	assert.Equal(t, uint8(2), *dst.Formatter.IndentWidth)
	assert.Equal(t, "c/**", dst.Files.Includes[0])
}

func TestMergeIsIdempotent(t *testing.T) {
	a := mustParse(t, `{ "linter": { "rules": { "correctness": { "noUnusedVariables": { "level": "warn", "options": { "ignoreRestSiblings": true } } } } } }`)
	b := Clone(a)
	Merge(b, a)
	ab, err := Serialize(a)
	require.NoError(t, err)
	bb, err := Serialize(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(ab), string(bb))
}

func TestRuleConfigurationMerge(t *testing.T) {
	withOpts := func() *RuleConfiguration {
		fk := FixSafe
		return &RuleConfiguration{Level: LevelWarn, Fix: &fk, Options: &RuleOptions{Raw: `{"a":1,"b":2}`}}
	}

	t.Run("plain onto object keeps fix and options", func(t *testing.T) {
		rc := withOpts()
		rc.MergeWith(&RuleConfiguration{Level: LevelError, Plain: true})
		assert.Equal(t, LevelError, rc.Level)
		assert.False(t, rc.Plain)
		assert.Equal(t, FixSafe, *rc.Fix)
		assert.JSONEq(t, `{"a":1,"b":2}`, rc.Options.Raw)
	})

	t.Run("plain onto plain replaces", func(t *testing.T) {
		rc := &RuleConfiguration{Level: LevelWarn, Plain: true}
		rc.MergeWith(&RuleConfiguration{Level: LevelOff, Plain: true})
		assert.Equal(t, RuleConfiguration{Level: LevelOff, Plain: true}, *rc)
	})

	t.Run("object onto object merges options key-wise", func(t *testing.T) {
		rc := withOpts()
		rc.MergeWith(&RuleConfiguration{Level: LevelInfo, Options: &RuleOptions{Raw: `{"b":3,"c":{"d":true}}`}})
		assert.Equal(t, LevelInfo, rc.Level)
		assert.Equal(t, FixSafe, *rc.Fix, "unset fix keeps the earlier one")
		assert.JSONEq(t, `{"a":1,"b":3,"c":{"d":true}}`, rc.Options.Raw)
		assert.True(t, rc.Options.Merged)
	})

	t.Run("object onto plain", func(t *testing.T) {
		rc := &RuleConfiguration{Level: LevelOff, Plain: true}
		fk := FixNone
		rc.MergeWith(&RuleConfiguration{Level: LevelWarn, Fix: &fk})
		assert.False(t, rc.Plain)
		assert.Equal(t, LevelWarn, rc.Level)
		assert.Equal(t, FixNone, *rc.Fix)
	})
}

func TestValidateMergedAcrossLayers(t *testing.T) {
	base, baseProv, diags := parse(t, `{ "linter": { "rules": { "recommended": true } } }`)
	require.Empty(t, diags)
	top, topProv, diags := Parse([]byte(`{ "linter": { "rules": { "all": true } } }`),
		ParseOptions{Source: CliSource()})
	require.Empty(t, diags)

	merged := Defaults()
	prov := NewProvenance()
	Merge(merged, base)
	prov.Append(baseProv, 0)
	Merge(merged, top)
	prov.Append(topProv, 1)

	out := ValidateMerged(merged, prov)
	require.Len(t, out, 1)
	assert.Equal(t, RecommendedAllMessage, out[0].Message)
	assert.Nil(t, merged.Linter.Rules)
	assert.True(t, merged.LinterEnabled())
}

func TestSerializeRoundTrip(t *testing.T) {
	src := `{
		"root": false,
		"extends": ["./base.json"],
		"formatter": { "indentStyle": "space", "indentWidth": 4 },
		"linter": {
			"domains": { "test": "all" },
			"rules": {
				"recommended": false,
				"suspicious": { "noDebugger": "off", "noDoubleEquals": { "level": "error", "fix": "unsafe", "options": {"ignoreNull": true} } }
			}
		},
		"javascript": { "globals": ["a", "b"] },
		"overrides": [ { "includes": ["x/**"], "formatter": { "lineWidth": 120 } } ]
	}`
	cfg := mustParse(t, src)
	out, err := Serialize(cfg)
	require.NoError(t, err)

	again, _, diags := Parse(out, ParseOptions{Catalog: fakeCatalog{}})
	require.Empty(t, diags)
	out2, err := Serialize(again)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
	assert.False(t, again.IsRoot())
	assert.Equal(t, uint16(120), *again.Overrides[0].Formatter.LineWidth)
}

func TestMergeIsAssociativeWithProvenance(t *testing.T) {
	layer := func(name, src string) (*Configuration, *Provenance) {
		cfg, prov, diags := Parse([]byte(src), ParseOptions{Source: BaseSource(name), Catalog: fakeCatalog{}})
		require.Empty(t, diags)
		return cfg, prov
	}
	a, pa := layer("a.json", `{ "formatter": { "indentWidth": 8, "lineWidth": 80 }, "javascript": { "globals": ["$"] } }`)
	b, pb := layer("b.json", `{ "formatter": { "lineWidth": 100 }, "linter": { "rules": { "suspicious": { "noDebugger": "warn" } } } }`)
	c, pc := layer("c.json", `{ "formatter": { "indentWidth": 2 }, "linter": { "rules": { "suspicious": { "noDebugger": { "level": "error", "fix": "none" } } } } }`)

	// (a ⊕ b) ⊕ c
	left := Clone(a)
	Merge(left, b)
	Merge(left, c)
	leftProv := NewProvenance()
	leftProv.Append(pa, 0)
	leftProv.Append(pb, 1)
	leftProv.Append(pc, 2)

	// a ⊕ (b ⊕ c)
	bc := Clone(b)
	Merge(bc, c)
	bcProv := NewProvenance()
	bcProv.Append(pb, 1)
	bcProv.Append(pc, 2)
	right := Clone(a)
	Merge(right, bc)
	rightProv := NewProvenance()
	rightProv.Append(pa, 0)
	for _, e := range bcProv.Entries() {
		rightProv.Add(e)
	}

	lj, err := Serialize(left)
	require.NoError(t, err)
	rj, err := Serialize(right)
	require.NoError(t, err)
	assert.JSONEq(t, string(lj), string(rj))

	for _, q := range []string{
		"formatter.indentWidth",
		"formatter.lineWidth",
		"javascript.globals",
		"linter.rules.suspicious.noDebugger",
		"linter.rules.suspicious.noDebugger.fix",
	} {
		le, lok, err := leftProv.Query(q)
		require.NoError(t, err)
		re, rok, err := rightProv.Query(q)
		require.NoError(t, err)
		require.Equal(t, lok, rok, q)
		assert.Equal(t, le.Source, re.Source, q)
		assert.Equal(t, le.MergeOrder, re.MergeOrder, q)
	}
	e, _, _ := leftProv.Query("formatter.indentWidth")
	assert.Equal(t, BaseSource("c.json"), e.Source)
	e, _, _ = leftProv.Query("formatter.lineWidth")
	assert.Equal(t, BaseSource("b.json"), e.Source)
}
