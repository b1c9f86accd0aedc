package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"weblint/internal/diag"
	"weblint/internal/project"
	"weblint/internal/source"
)

// ErrNoConfig is returned by Discover when no configuration file exists
// between the start directory and the filesystem root.
var ErrNoConfig = errors.New("no configuration file found")

// Layer is one configuration document in merge order.
type Layer struct {
	Path       string
	File       source.FileID
	Source     Source
	Config     *Configuration
	Provenance *Provenance
}

// Loaded is the merged project configuration before per-path overrides.
type Loaded struct {
	// Root is the directory of the nearest configuration file, or the start
	// directory when only defaults apply. Override and ignore globs are
	// relative to it.
	Root        string
	Path        string
	Layers      []Layer
	Base        *Configuration
	Provenance  *Provenance
	Cli         *Configuration
	CliProv     *Provenance
	Ignore      *IgnoreMatcher
	Diagnostics []diag.Diagnostic
	Digest      [32]byte
}

// Loader discovers and loads configuration files.
type Loader struct {
	Fs      afero.Fs
	Files   *source.FileSet
	Catalog RuleCatalog
}

func NewLoader(fsys afero.Fs, files *source.FileSet, catalog RuleCatalog) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if files == nil {
		files = source.NewFileSet()
	}
	return &Loader{Fs: fsys, Files: files, Catalog: catalog}
}

func (l *Loader) exists(p string) bool {
	ok, err := afero.Exists(l.Fs, p)
	return err == nil && ok
}

// candidate returns the configuration file in dir, if any.
func (l *Loader) candidate(dir string) (string, bool) {
	for _, name := range []string{FileBiomeJSON, FileBiomeJSONC} {
		p := filepath.Join(dir, name)
		if l.exists(p) {
			return p, true
		}
	}
	p := filepath.Join(dir, FilePackageJSON)
	if data, err := afero.ReadFile(l.Fs, p); err == nil && gjson.GetBytes(data, "biome").Exists() {
		return p, true
	}
	return "", false
}

// Discover walks up from startDir to the first configuration file.
func (l *Loader) Discover(startDir string) (string, error) {
	for dir := range project.Ancestors(startDir) {
		if p, ok := l.candidate(dir); ok {
			return p, nil
		}
	}
	return "", ErrNoConfig
}

// Load discovers the configuration for startDir and merges defaults,
// extended files, parent configurations of non-root files and the file
// itself. cli may be nil. I/O failures are returned as errors; everything
// else becomes a diagnostic.
func (l *Loader) Load(startDir string, cli *CliOverlay) (*Loaded, error) {
	path, err := l.Discover(startDir)
	switch {
	case errors.Is(err, ErrNoConfig):
		abs, aerr := filepath.Abs(startDir)
		if aerr != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", aerr)
		}
		return l.finish(&Loaded{Root: abs}, cli)
	case err != nil:
		return nil, err
	}
	return l.LoadFile(path, cli)
}

// LoadFile loads an explicit configuration file (--config-path).
func (l *Loader) LoadFile(path string, cli *CliOverlay) (*Loaded, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if info, err := l.Fs.Stat(abs); err == nil && info.IsDir() {
		p, ok := l.candidate(abs)
		if !ok {
			return nil, fmt.Errorf("%s: %w", abs, ErrNoConfig)
		}
		abs = p
	}
	out := &Loaded{Root: filepath.Dir(abs), Path: abs}
	st := &loadState{visiting: map[string]bool{}, loaded: map[string]bool{}}
	if err := l.loadChain(abs, BaseSource(abs), st, out); err != nil {
		return nil, err
	}
	return l.finish(out, cli)
}

type loadState struct {
	visiting map[string]bool
	loaded   map[string]bool
	stack    []string
	merged   *Configuration
}

// loadChain appends the layers contributed by path: parents of a non-root
// file first, then its extends in declaration order, then the file.
func (l *Loader) loadChain(path string, src Source, st *loadState, out *Loaded) error {
	if st.visiting[path] {
		cycle := append(append([]string{}, st.stack...), path)
		for i := range cycle {
			cycle[i] = filepath.Base(cycle[i])
		}
		out.Diagnostics = append(out.Diagnostics, diag.NewError(diag.CatConfigExtendsCycle, source.Span{},
			"Cyclic extends: "+strings.Join(cycle, " -> ")))
		return nil
	}
	if st.loaded[path] {
		return nil
	}
	st.visiting[path] = true
	st.stack = append(st.stack, path)
	defer func() {
		st.visiting[path] = false
		st.stack = st.stack[:len(st.stack)-1]
	}()

	layer, diags, err := l.parseFile(path, src, st.merged)
	if err != nil {
		return err
	}
	out.Diagnostics = append(out.Diagnostics, diags...)
	log.Debug().Str("component", "config").Str("path", path).Stringer("source", src).Msg("config layer parsed")

	if !layer.Config.IsRoot() {
		parentDir := filepath.Dir(filepath.Dir(path))
		if parentDir != filepath.Dir(path) {
			if parent, err := l.Discover(parentDir); err == nil {
				if err := l.loadChain(parent, ExtendSource(parent), st, out); err != nil {
					return err
				}
			}
		}
	}

	for i, ext := range layer.Config.Extends {
		target, ok := l.resolveExtend(path, ext)
		if !ok {
			sp := source.Span{File: layer.File}
			if e, found := layer.Provenance.Lookup(Query{Field("extends")}); found {
				sp = e.Range
			}
			out.Diagnostics = append(out.Diagnostics, diag.NewError(diag.CatConfigExtends, sp,
				fmt.Sprintf("Failed to resolve the configuration from `%s`.", ext)).
				WithNote(sp, fmt.Sprintf("extends[%d]", i)))
			continue
		}
		if err := l.loadChain(target, ExtendSource(target), st, out); err != nil {
			return err
		}
	}

	st.loaded[path] = true
	out.Layers = append(out.Layers, layer)
	if st.merged == nil {
		st.merged = Defaults()
	}
	Merge(st.merged, layer.Config)
	return nil
}

// resolveExtend maps an extends entry to a file path.
func (l *Loader) resolveExtend(from, ext string) (string, bool) {
	dir := filepath.Dir(from)
	if ext == "//" {
		for d := filepath.Dir(dir); ; d = filepath.Dir(d) {
			if p, ok := l.candidate(d); ok && l.isRootFile(p) {
				return p, true
			}
			if filepath.Dir(d) == d {
				return "", false
			}
		}
	}
	if strings.HasSuffix(ext, ".json") || strings.HasSuffix(ext, ".jsonc") {
		p := ext
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, filepath.FromSlash(ext))
		}
		return p, l.exists(p)
	}
	// пакет из node_modules: <spec>.json, <spec>.jsonc, <spec>/biome.json
	for d := dir; ; d = filepath.Dir(d) {
		base := filepath.Join(d, "node_modules", filepath.FromSlash(ext))
		for _, p := range []string{base + ".json", base + ".jsonc", filepath.Join(base, FileBiomeJSON), filepath.Join(base, FileBiomeJSONC)} {
			if l.exists(p) {
				return p, true
			}
		}
		if filepath.Dir(d) == d {
			return "", false
		}
	}
}

// isRootFile peeks at the root flag without decoding the whole file.
func (l *Loader) isRootFile(p string) bool {
	data, err := afero.ReadFile(l.Fs, p)
	if err != nil {
		return false
	}
	key := "root"
	if filepath.Base(p) == FilePackageJSON {
		key = "biome.root"
	}
	r := gjson.GetBytes(jsonc.ToJSON(data), key)
	return !r.Exists() || r.Bool()
}

// parseFile reads and decodes one document. prev is the configuration
// merged so far; its json.parser flags decide whether biome.json may carry
// comments and trailing commas.
func (l *Loader) parseFile(path string, src Source, prev *Configuration) (Layer, []diag.Diagnostic, error) {
	id, err := l.Files.LoadFS(l.Fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Layer{}, nil, fmt.Errorf("%s: %w", path, ErrNoConfig)
		}
		return Layer{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file := l.Files.Get(id)
	opts := ParseOptions{Source: src, File: id, Catalog: l.Catalog}
	switch filepath.Base(path) {
	case FileBiomeJSONC:
		opts.AllowComments, opts.AllowTrailingCommas = true, true
	default:
		if strings.HasSuffix(path, ".jsonc") {
			opts.AllowComments, opts.AllowTrailingCommas = true, true
		} else if prev != nil && prev.Json != nil && prev.Json.Parser != nil {
			opts.AllowComments = Bool(prev.Json.Parser.AllowComments, false)
			opts.AllowTrailingCommas = Bool(prev.Json.Parser.AllowTrailingCommas, false)
		}
	}

	layer := Layer{Path: path, File: id, Source: src}
	var diags []diag.Diagnostic
	if filepath.Base(path) == FilePackageJSON {
		cfg, prov, ds, _ := ParseSection(file.Content, "biome", opts)
		layer.Config, layer.Provenance, diags = cfg, prov, ds
	} else {
		layer.Config, layer.Provenance, diags = Parse(file.Content, opts)
	}
	return layer, diags, nil
}

func (l *Loader) finish(out *Loaded, cli *CliOverlay) (*Loaded, error) {
	out.Base = Defaults()
	out.Provenance = NewProvenance()
	h := sha256.New()
	for i, layer := range out.Layers {
		Merge(out.Base, layer.Config)
		out.Provenance.Append(layer.Provenance, i)
		if f := l.Files.Get(layer.File); f != nil {
			_, _ = h.Write(f.Hash[:])
		}
	}
	out.Diagnostics = append(out.Diagnostics, ValidateMerged(out.Base, out.Provenance)...)
	if cli != nil {
		out.Cli, out.CliProv = cli.Config, cli.Provenance
		_, _ = h.Write(cli.Digest[:])
		out.Diagnostics = append(out.Diagnostics, cli.Diagnostics...)
	}
	copy(out.Digest[:], h.Sum(nil))

	ign, err := LoadIgnore(l.Fs, out.Root, out.Base)
	if err != nil {
		return nil, err
	}
	out.Ignore = ign
	return out, nil
}

// HasErrors reports whether loading produced error diagnostics.
func (ld *Loaded) HasErrors() bool {
	for i := range ld.Diagnostics {
		if ld.Diagnostics[i].IsError() {
			return true
		}
	}
	return false
}

// Rel converts p to a slash path relative to the project root.
func (ld *Loaded) Rel(p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(ld.Root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// Resolved is the configuration that applies to one file.
type Resolved struct {
	Config     *Configuration
	Provenance *Provenance
	// Overrides lists the indexes of the matching override entries.
	Overrides []int
	// Diagnostics report invariants the overrides broke; the offending
	// settings fall back to their defaults.
	Diagnostics []diag.Diagnostic
}

// Resolve applies matching overrides and the CLI layer for path. The
// result is independent of ld and may be cached.
func (ld *Loaded) Resolve(path string) *Resolved {
	rel := ld.Rel(path)
	cfg := Clone(ld.Base)
	prov := ld.Provenance.Clone()
	order := prov.MaxMergeOrder() + 1
	from := -1
	if e, ok := ld.Provenance.Lookup(Query{Field("overrides")}); ok {
		from = e.MergeOrder
	}
	var matched []int
	for i, ov := range ld.Base.Overrides {
		if !Includes(ov.Includes).Matches(rel) {
			continue
		}
		Merge(cfg, &Configuration{
			Formatter:  ov.Formatter,
			Linter:     ov.Linter,
			Assist:     ov.Assist,
			JavaScript: ov.JavaScript,
			Json:       ov.Json,
			Css:        ov.Css,
			Graphql:    ov.Graphql,
		})
		prov.AppendRebased(ld.Provenance, Query{Field("overrides"), Index(i)}, from, OverrideSource(i), order)
		order++
		matched = append(matched, i)
	}
	if ld.Cli != nil {
		Merge(cfg, ld.Cli)
		prov.Append(ld.CliProv, order)
	}
	diags := ValidateMerged(cfg, prov)
	return &Resolved{Config: cfg, Provenance: prov, Overrides: matched, Diagnostics: diags}
}

// Included reports whether path passes files.includes and the ignore files.
func (ld *Loaded) Included(path string, isDir bool) bool {
	rel := ld.Rel(path)
	if ld.Ignore.Ignored(rel, isDir) {
		return false
	}
	if ld.Base.Files != nil && !isDir && !Includes(ld.Base.Files.Includes).Matches(rel) {
		return false
	}
	return true
}
