package workspace

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"weblint/internal/analyzer"
	"weblint/internal/diag"
	"weblint/internal/fix"
	"weblint/internal/parse"
	"weblint/internal/project"
	"weblint/internal/source"
	"weblint/internal/trace"
)

// LintOptions select what LintAll does with each file.
type LintOptions struct {
	// Jobs bounds parallelism; 0 means GOMAXPROCS.
	Jobs int
	// Limit caps rule diagnostics per file; 0 means unlimited.
	Limit int
	// Fix runs the fixer instead of a single analysis.
	Fix     bool
	FixMode fix.Mode
	// Write stores fixed files; without it a fix run is a dry run.
	Write             bool
	SuppressionReason string
	// Filter restricts the run to the rule indexes it accepts.
	Filter func(rule int) bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string
	File        source.FileID
	Diagnostics []diag.Diagnostic
	// Actions counts the fixes offered by the analysis.
	Actions int
	Fix     *fix.FixResult
	// Original is the text before fixing, kept for dry-run diffs.
	Original string
	Written  bool
	Cached   bool
	Elapsed  time.Duration
	Err      error
}

// HasErrors reports an error diagnostic or a failure.
func (r *FileResult) HasErrors() bool {
	if r.Err != nil {
		return true
	}
	for i := range r.Diagnostics {
		if r.Diagnostics[i].IsError() {
			return true
		}
	}
	return false
}

// LintAll processes paths in parallel. Results follow the order of paths;
// per-file failures are reported in FileResult.Err and do not stop the
// run. The returned error is the context error, if any.
func (w *Workspace) LintAll(ctx context.Context, paths []string, opts LintOptions) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, p := range paths {
		w.progress.OnEvent(Event{File: p, Phase: PhaseQueued})
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = w.LintFile(gctx, path, opts)
			return nil
		})
	}
	err := g.Wait()
	w.progress.OnEvent(Event{Phase: PhaseDone})
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

// LintFile analyzes (or fixes) one file.
func (w *Workspace) LintFile(ctx context.Context, path string, opts LintOptions) FileResult {
	start := time.Now()
	path = w.abs(path)
	res := FileResult{Path: path}
	ctx, sp := trace.Start(ctx, trace.ScopeFile, "file:"+w.loaded.Rel(path))
	defer func() { sp.End(fmt.Sprintf("%d diagnostics", len(res.Diagnostics))) }()
	enter := func(phase Phase) { w.progress.OnEvent(Event{File: path, Phase: phase}) }
	finish := func(phase Phase) FileResult {
		res.Elapsed = time.Since(start)
		w.progress.OnEvent(Event{File: path, Phase: phase, Diagnostics: len(res.Diagnostics), Err: res.Err, Elapsed: res.Elapsed})
		return res
	}
	fail := func(err error) FileResult {
		sp.WithExtra("error", err.Error())
		res.Err = err
		finish(PhaseFailed)
		if !errors.Is(err, context.Canceled) {
			w.logger.Debug().Err(err).Str("path", path).Msg("file failed")
		}
		return res
	}

	lang, err := Language(path)
	if err != nil {
		return fail(err)
	}
	enter(PhaseReading)
	content, err := w.read(path)
	if err != nil {
		return fail(err)
	}
	res.File = w.files.Add(path, content)
	file := w.files.Get(res.File)
	settings := w.Settings(path, lang)

	if opts.Fix {
		enter(PhaseFixing)
		fixed, err := fix.FixAll(ctx, fix.FixInput{
			File:              file,
			Language:          lang,
			Settings:          settings,
			Mode:              opts.FixMode,
			SuppressionReason: opts.SuppressionReason,
			Filter:            opts.Filter,
			Fs:                w.fs,
		})
		if err != nil {
			return fail(err)
		}
		res.Fix = &fixed
		res.Original = string(content)
		res.Diagnostics = fixed.Diagnostics
		w.metrics.observeFix(fixed.Iterations)
		if opts.Write && fixed.Changed() {
			if err := fix.Write(w.fs, path, &fixed); err != nil {
				return fail(err)
			}
			res.Written = true
			// следующий анализ должен видеть новый текст
			w.mu.Lock()
			if doc, ok := w.docs[path]; ok {
				doc.Content = []byte(fixed.Text)
				doc.Version++
			}
			w.mu.Unlock()
		}
		if fixed.Changed() {
			// диагностики относятся к исправленному тексту
			res.File = w.files.Add(path, []byte(fixed.Text))
			rebind(res.Diagnostics, res.File)
		}
		w.metrics.observeFile(lang.String(), time.Since(start), res.Diagnostics)
		return finish(PhaseDone)
	}

	key := w.cacheKey(file, opts)
	var cached CachedResult
	if hit, err := w.cache.Get(key, &cached); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("ignoring unreadable cache entry")
	} else if hit && cached.ContentHash == project.Digest(file.Hash) {
		rebind(cached.Diagnostics, res.File)
		res.Diagnostics = cached.Diagnostics
		res.Actions = cached.Actions
		res.Cached = true
		sp.WithExtra("cached", "true")
		w.metrics.observeCacheHit()
		w.metrics.observeFile(lang.String(), 0, res.Diagnostics)
		return finish(PhaseCached)
	}

	enter(PhaseParsing)
	parsed, err := parse.Text(ctx, lang, res.File, string(content))
	if err != nil {
		return fail(err)
	}
	enter(PhaseAnalyzing)
	analyzeStart := time.Now()
	out := analyzer.Analyze(ctx, analyzer.Input{
		Tree:     parsed.Tree,
		File:     file,
		Settings: settings,
		Limit:    opts.Limit,
		Filter:   opts.Filter,
		Fs:       w.fs,
	})
	if out.Aborted {
		return fail(ctx.Err())
	}
	res.Diagnostics = append(slices.Clone(parsed.Diagnostics), out.Diagnostics...)
	res.Actions = len(out.Actions)
	w.metrics.observeFile(lang.String(), time.Since(analyzeStart), res.Diagnostics)

	if err := w.cache.Put(key, &CachedResult{
		Path:        path,
		ContentHash: project.Digest(file.Hash),
		Diagnostics: res.Diagnostics,
		Actions:     res.Actions,
	}); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("cache write failed")
	}
	return finish(PhaseDone)
}

// cacheKey covers the file content, the configuration, the environment and
// the options that change the output. Runs with a Filter are keyed apart.
func (w *Workspace) cacheKey(file *source.File, opts LintOptions) project.Digest {
	var extra strings.Builder
	fmt.Fprintf(&extra, "limit=%d", opts.Limit)
	if opts.Filter != nil {
		extra.WriteString(";filter=")
		for i := range w.reg.Len() {
			if opts.Filter(i) {
				fmt.Fprintf(&extra, "%d,", i)
			}
		}
	}
	return project.NewKey().Digest(file.Hash).Digest(w.envDigest).String(file.Path).String(extra.String()).Sum()
}
