// Package workspace runs the analyzer over sets of files: it owns the open
// documents, the settings cache, the on-disk result cache and the metrics.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"weblint/internal/analyzer"
	"weblint/internal/config"
	"weblint/internal/diag"
	"weblint/internal/parse"
	"weblint/internal/project"
	"weblint/internal/source"
	"weblint/internal/syntax"
	"weblint/internal/version"
)

// ErrUnsupportedLanguage is returned for files no grammar can parse.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// DefaultSettingsCacheSize bounds the per-path settings cache.
const DefaultSettingsCacheSize = 512

// Options configure a Workspace.
type Options struct {
	Fs       afero.Fs
	Registry *analyzer.Registry
	// Config is the loaded project configuration; nil means defaults.
	Config *config.Loaded
	Env    analyzer.Environment
	// Files receives every file read; share it with the config loader so
	// one printer can render both.
	Files *source.FileSet
	// Cache and Metrics are optional.
	Cache             *DiskCache
	Metrics           *Metrics
	Progress          ProgressSink
	SettingsCacheSize int
}

// Document is a file whose content is held in memory instead of on disk.
type Document struct {
	Path     string
	Language syntax.Language
	Content  []byte
	Version  int
}

// Workspace analyzes files under one configuration. It is safe for
// concurrent use.
type Workspace struct {
	fs       afero.Fs
	reg      *analyzer.Registry
	loaded   *config.Loaded
	env      analyzer.Environment
	files    *source.FileSet
	cache    *DiskCache
	metrics  *Metrics
	progress ProgressSink
	logger   zerolog.Logger

	// settings and the disk cache key depend on envDigest
	settings  *lru.Cache[string, *analyzer.Settings]
	envDigest project.Digest

	mu   sync.RWMutex
	docs map[string]*Document
}

// New builds a workspace. Domains declared by the project manifest are
// added to opts.Env.Domains.
func New(opts Options) (*Workspace, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("workspace: registry is required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Config == nil {
		loader := config.NewLoader(opts.Fs, nil, opts.Registry)
		ld, err := loader.Load(".", nil)
		if err != nil {
			return nil, err
		}
		opts.Config = ld
	}
	if opts.Progress == nil {
		opts.Progress = nopSink{}
	}
	if opts.Files == nil {
		opts.Files = source.NewFileSetWithBase(opts.Config.Root)
	}
	size := opts.SettingsCacheSize
	if size <= 0 {
		size = DefaultSettingsCacheSize
	}
	settings, err := lru.New[string, *analyzer.Settings](size)
	if err != nil {
		return nil, err
	}
	w := &Workspace{
		fs:       opts.Fs,
		reg:      opts.Registry,
		loaded:   opts.Config,
		env:      opts.Env,
		files:    opts.Files,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		progress: opts.Progress,
		logger:   log.With().Str("component", "workspace").Logger(),
		settings: settings,
		docs:     make(map[string]*Document),
	}
	w.detectDomains()
	w.envDigest = w.environmentDigest()
	return w, nil
}

func (w *Workspace) detectDomains() {
	path, err := project.FindManifest(w.fs, w.loaded.Root)
	if err != nil {
		if !errors.Is(err, project.ErrNoManifest) {
			w.logger.Warn().Err(err).Msg("package manifest lookup failed")
		}
		return
	}
	m, err := project.LoadManifest(w.fs, path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("skipping package manifest")
		return
	}
	found := analyzer.DomainsFromDependencies(m.Dependencies)
	w.env.Domains |= found
	w.logger.Debug().Strs("domains", found.Names()).Str("manifest", path).Msg("detected domains")
}

func (w *Workspace) environmentDigest() project.Digest {
	key := fmt.Sprintf("%s|%v|%v|%v|%v", version.Version, w.env.Domains, w.env.Unstable, w.env.Only, w.env.Skip)
	return project.NewKey().Digest(w.loaded.Digest).String(key).Sum()
}

// Files returns the FileSet holding every file read so far.
func (w *Workspace) Files() *source.FileSet { return w.files }

// Config returns the loaded configuration.
func (w *Workspace) Config() *config.Loaded { return w.loaded }

// Registry returns the rule registry.
func (w *Workspace) Registry() *analyzer.Registry { return w.reg }

// Open stores an in-memory version of path that takes precedence over the
// file on disk. Reopening bumps the version.
func (w *Workspace) Open(path string, content []byte) *Document {
	path = w.abs(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[path]
	if !ok {
		doc = &Document{Path: path, Language: syntax.LanguageFromPath(path)}
		w.docs[path] = doc
	}
	doc.Content = content
	doc.Version++
	return doc
}

// Close forgets the in-memory version of path.
func (w *Workspace) Close(path string) {
	path = w.abs(path)
	w.mu.Lock()
	delete(w.docs, path)
	w.mu.Unlock()
}

// Document returns a copy of the open document for path.
func (w *Workspace) Document(path string) (Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[w.abs(path)]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

func (w *Workspace) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(w.loaded.Root, path)
}

// read returns the open document content or the file on disk.
func (w *Workspace) read(path string) ([]byte, error) {
	w.mu.RLock()
	doc, ok := w.docs[path]
	var content []byte
	if ok {
		content = doc.Content
	}
	w.mu.RUnlock()
	if ok {
		return content, nil
	}
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Settings returns the rule settings for path. Resolution runs once per
// (project root, config digest, matching overrides, language).
func (w *Workspace) Settings(path string, lang syntax.Language) *analyzer.Settings {
	resolved := w.loaded.Resolve(w.abs(path))
	key := fmt.Sprintf("%s|%x|%v|%s", w.loaded.Root, w.loaded.Digest, resolved.Overrides, lang)
	if s, ok := w.settings.Get(key); ok {
		return s
	}
	s := analyzer.ResolveSettings(w.reg, resolved.Config, lang, w.env)
	s.Diagnostics = append(s.Diagnostics, resolved.Diagnostics...)
	// гонка вставки безопасна: побеждает последний
	w.settings.Add(key, s)
	return s
}

// ConfigDiagnostics returns the rule option and merged configuration
// errors of every settings resolved so far, each reported once.
func (w *Workspace) ConfigDiagnostics() []diag.Diagnostic {
	type key struct {
		span source.Span
		msg  string
	}
	seen := make(map[key]bool)
	var out []diag.Diagnostic
	for _, s := range w.settings.Values() {
		for _, d := range s.Diagnostics {
			k := key{d.Primary, d.Message}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, d)
		}
	}
	return out
}

// Language returns the language of path, or ErrUnsupportedLanguage.
func Language(path string) (syntax.Language, error) {
	lang := syntax.LanguageFromPath(path)
	if !parse.Supported(lang) {
		return lang, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}
	return lang, nil
}
