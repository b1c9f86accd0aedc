package config

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weblint/internal/diag"
	"weblint/internal/source"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
	return fs
}

func newTestLoader(fs afero.Fs) *Loader {
	return NewLoader(fs, source.NewFileSet(), fakeCatalog{})
}

func TestLoadExtendsAndOverrideProvenance(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/base.json": `{ "formatter": { "indentWidth": 8, "lineWidth": 100 } }`,
		"/proj/biome.json": `{
			"extends": ["./base.json"],
			"formatter": { "indentWidth": 4 },
			"overrides": [ { "includes": ["**/tests/**"], "formatter": { "indentWidth": 2 } } ]
		}`,
		"/proj/src/a.js": "",
	})
	ld, err := newTestLoader(fs).Load("/proj/src", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)
	assert.Equal(t, "/proj", ld.Root)
	assert.Equal(t, "/proj/biome.json", ld.Path)
	require.Len(t, ld.Layers, 2)
	assert.Equal(t, SourceExtend, ld.Layers[0].Source.Kind)
	assert.Equal(t, SourceBaseConfig, ld.Layers[1].Source.Kind)

	assert.Equal(t, uint8(4), *ld.Base.Formatter.IndentWidth)
	assert.Equal(t, uint16(100), *ld.Base.Formatter.LineWidth)

	e, ok, err := ld.Provenance.Query("formatter.lineWidth")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ExtendSource("/proj/base.json"), e.Source)

	base, ok := ld.Provenance.Lookup(MustParseQuery("formatter.indentWidth"))
	require.True(t, ok)
	assert.Equal(t, SourceBaseConfig, base.Source.Kind)

	inTests := ld.Resolve("/proj/tests/a.js")
	assert.Equal(t, uint8(2), *inTests.Config.Formatter.IndentWidth)
	assert.Equal(t, []int{0}, inTests.Overrides)
	ov, ok := inTests.Provenance.Lookup(MustParseQuery("formatter.indentWidth"))
	require.True(t, ok)
	assert.Equal(t, OverrideSource(0), ov.Source)
	assert.Greater(t, ov.MergeOrder, base.MergeOrder)

	outside := ld.Resolve("/proj/src/a.js")
	assert.Equal(t, uint8(4), *outside.Config.Formatter.IndentWidth)
	assert.Empty(t, outside.Overrides)

	// the base is untouched by Resolve
	assert.Equal(t, uint8(4), *ld.Base.Formatter.IndentWidth)
}

func TestLoadCliOverlayWins(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/biome.json": `{ "overrides": [ { "includes": ["tests/**"], "formatter": { "indentWidth": 2 } } ] }`,
	})
	l := newTestLoader(fs)
	cli, err := ParseCliOverlay([]string{"formatter.indentWidth=6", "linter.rules.style.noVar=off"}, l.Files, l.Catalog)
	require.NoError(t, err)
	require.Empty(t, cli.Diagnostics)

	ld, err := l.Load("/proj", cli)
	require.NoError(t, err)
	r := ld.Resolve("/proj/tests/x.js")
	assert.Equal(t, uint8(6), *r.Config.Formatter.IndentWidth)
	assert.True(t, r.Config.LinterRules().Rule("style", "noVar").Disabled())
	e, ok := r.Provenance.Lookup(MustParseQuery("formatter.indentWidth"))
	require.True(t, ok)
	assert.Equal(t, SourceCli, e.Source.Kind)

	_, err = ParseCliOverlay([]string{"formatter.indentWidth"}, l.Files, l.Catalog)
	assert.Error(t, err)
	_, err = ParseCliOverlay([]string{"formatter..x=1"}, l.Files, l.Catalog)
	assert.Error(t, err)
}

func TestLoadPackageJSON(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/app/package.json": `{ "name": "app", "biome": { "formatter": { "lineWidth": 90 } } }`,
	})
	ld, err := newTestLoader(fs).Load("/app", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)
	assert.Equal(t, "/app/package.json", ld.Path)
	assert.Equal(t, uint16(90), *ld.Base.Formatter.LineWidth)

	e, ok, _ := ld.Provenance.Query("formatter.lineWidth")
	require.True(t, ok)
	f := ld.Layers[0]
	content := string(newFileContent(t, fs, "/app/package.json"))
	assert.Equal(t, "90", content[e.Range.Start:e.Range.End])
	assert.Equal(t, f.Path, e.Source.Path)
}

func newFileContent(t *testing.T, fs afero.Fs, p string) []byte {
	t.Helper()
	b, err := afero.ReadFile(fs, p)
	require.NoError(t, err)
	return b
}

func TestLoadNestedNonRoot(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/mono/biome.json":     `{ "formatter": { "lineWidth": 120, "indentWidth": 8 } }`,
		"/mono/pkg/biome.json": `{ "root": false, "formatter": { "indentWidth": 3 } }`,
	})
	ld, err := newTestLoader(fs).Load("/mono/pkg/src", nil)
	require.NoError(t, err)
	require.Len(t, ld.Layers, 2)
	assert.Equal(t, "/mono/biome.json", ld.Layers[0].Path)
	assert.Equal(t, uint16(120), *ld.Base.Formatter.LineWidth)
	assert.Equal(t, uint8(3), *ld.Base.Formatter.IndentWidth)
	assert.Equal(t, "/mono/pkg", ld.Root)
}

func TestLoadExtendsRootShorthand(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/mono/biome.json":       `{ "linter": { "rules": { "style": { "noVar": "error" } } } }`,
		"/mono/pkg/a/biome.json": `{ "extends": "//" }`,
	})
	// "extends" must be an array: the string form is a type mismatch
	ld, err := newTestLoader(fs).Load("/mono/pkg/a", nil)
	require.NoError(t, err)
	require.Len(t, ld.Diagnostics, 1)
	assert.Equal(t, diag.CatConfigTypeMismatch, ld.Diagnostics[0].Category)

	fs = memFs(t, map[string]string{
		"/mono/biome.json":       `{ "linter": { "rules": { "style": { "noVar": "error" } } } }`,
		"/mono/pkg/a/biome.json": `{ "extends": ["//"] }`,
	})
	ld, err = newTestLoader(fs).Load("/mono/pkg/a", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)
	assert.Equal(t, LevelError, ld.Base.LinterRules().Rule("style", "noVar").Level)
}

func TestLoadExtendsFromNodeModules(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/node_modules/@acme/lint/biome.json": `{ "formatter": { "indentStyle": "space" } }`,
		"/p/biome.json":                         `{ "extends": ["@acme/lint"] }`,
	})
	ld, err := newTestLoader(fs).Load("/p", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)
	assert.Equal(t, IndentSpace, *ld.Base.Formatter.IndentStyle)
}

func TestLoadExtendsErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/c/biome.json": `{ "extends": ["./a.json", "./missing.json"] }`,
		"/c/a.json":     `{ "extends": ["./b.json"] }`,
		"/c/b.json":     `{ "extends": ["./a.json"], "formatter": { "lineWidth": 70 } }`,
	})
	ld, err := newTestLoader(fs).Load("/c", nil)
	require.NoError(t, err)
	cats := categories(ld.Diagnostics)
	assert.Contains(t, cats, diag.CatConfigExtendsCycle)
	assert.Contains(t, cats, diag.CatConfigExtends)
	assert.True(t, ld.HasErrors())
	assert.Equal(t, uint16(70), *ld.Base.Formatter.LineWidth)
}

func TestLoadWithoutConfigUsesDefaults(t *testing.T) {
	fs := memFs(t, map[string]string{"/empty/a.js": ""})
	ld, err := newTestLoader(fs).Load("/empty", nil)
	require.NoError(t, err)
	assert.Equal(t, "/empty", ld.Root)
	assert.Empty(t, ld.Path)
	assert.Equal(t, IndentTab, *ld.Base.Formatter.IndentStyle)
	assert.True(t, ld.Base.LinterEnabled())

	_, err = newTestLoader(fs).Discover("/empty")
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadCommentsInBiomeJSONC(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/j/biome.jsonc": "{\n  // comment\n  \"formatter\": { \"lineWidth\": 60, },\n}",
	})
	ld, err := newTestLoader(fs).Load("/j", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)
	assert.Equal(t, uint16(60), *ld.Base.Formatter.LineWidth)

	fs = memFs(t, map[string]string{"/j/biome.json": "{\n  // comment\n}"})
	ld, err = newTestLoader(fs).Load("/j", nil)
	require.NoError(t, err)
	assert.Equal(t, []diag.Category{diag.CatConfigParse}, categories(ld.Diagnostics))
}

func TestIncludedHonorsIgnoreFilesAndIncludes(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/w/biome.json":   `{ "files": { "includes": ["**", "!**/*.min.js"] }, "vcs": { "enabled": true, "useIgnoreFile": true } }`,
		"/w/.gitignore":   "node_modules\n",
		"/w/.biomeignore": "# build output\ndist/\n!dist/keep.js\n",
	})
	ld, err := newTestLoader(fs).Load("/w", nil)
	require.NoError(t, err)

	assert.True(t, ld.Included("/w/src/a.js", false))
	assert.False(t, ld.Included("/w/src/a.min.js", false))
	assert.False(t, ld.Included("/w/node_modules/x/index.js", false))
	assert.False(t, ld.Included("/w/dist/out.js", false))
	assert.True(t, ld.Included("/w/dist/keep.js", false))
}

func TestResolveReportsRecommendedAllFromOverride(t *testing.T) {
	const biome = `{
		"linter": { "rules": { "correctness": { "recommended": true } } },
		"overrides": [ { "includes": ["tests/**"], "linter": { "rules": { "correctness": { "all": true } } } } ]
	}`
	fs := memFs(t, map[string]string{"/proj/biome.json": biome})
	ld, err := newTestLoader(fs).Load("/proj", nil)
	require.NoError(t, err)
	require.Empty(t, ld.Diagnostics)

	inTests := ld.Resolve("/proj/tests/a.js")
	require.Len(t, inTests.Diagnostics, 1)
	d := inTests.Diagnostics[0]
	assert.Equal(t, RecommendedAllMessage, d.Message)
	assert.True(t, d.IsError())
	// points at the override, the layer merged last
	assert.Greater(t, int(d.Primary.Start), strings.Index(biome, `"overrides"`))
	_, kept := inTests.Config.Linter.Rules.Groups["correctness"]
	assert.False(t, kept, "the group falls back to defaults")

	outside := ld.Resolve("/proj/src/a.js")
	assert.Empty(t, outside.Diagnostics)
	assert.True(t, *outside.Config.Linter.Rules.Groups["correctness"].Recommended)
}
