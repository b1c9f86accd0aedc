package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"weblint/internal/analyzer"
	"weblint/internal/config"
	"weblint/internal/logging"
	"weblint/internal/observ"
	"weblint/internal/rules"
	"weblint/internal/source"
	"weblint/internal/trace"
	"weblint/internal/workspace"
)

const (
	envConfigPath = "WEBLINT_CONFIG_PATH"
	envLogLevel   = logging.EnvLevel
	envNoColor    = "NO_COLOR"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	color          switchMode
	quiet          bool
	timings        bool
	maxDiagnostics int
	jobs           int
	configPath     string
	configSets     []string
	ui             switchMode
	metricsAddr    string
	noCache        bool
	cacheDir       string
}

// app is the state of one CLI invocation.
type app struct {
	fs       afero.Fs
	g        *globalOptions
	timer    *observ.Timer
	metrics  *workspace.Metrics
	cleanups []func() error
	runSpan  *trace.Span
}

func newApp() *app {
	return &app{fs: afero.NewOsFs(), timer: observ.NewTimer()}
}

func (a *app) onClose(fn func() error) { a.cleanups = append(a.cleanups, fn) }

// close runs cleanups in reverse order.
func (a *app) close(stderr io.Writer) {
	if a.runSpan != nil {
		a.runSpan.End("")
	}
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
	}
	a.cleanups = nil
}

func readGlobals(cmd *cobra.Command) (*globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	g := &globalOptions{}
	colorStr, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if g.configPath, err = flags.GetString("config-path"); err != nil {
		return nil, fmt.Errorf("failed to get config-path flag: %w", err)
	}
	if g.configPath == "" {
		g.configPath = os.Getenv(envConfigPath)
	}
	if g.configSets, err = flags.GetStringArray("config-set"); err != nil {
		return nil, fmt.Errorf("failed to get config-set flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if g.ui, err = parseSwitch("ui", uiStr); err != nil {
		return nil, err
	}
	if g.metricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return nil, fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	if g.noCache, err = flags.GetBool("no-cache"); err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if g.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if g.color, err = parseSwitch("color", colorStr); err != nil {
		return nil, err
	}
	return g, nil
}

// before runs ahead of every command: flags, logging, tracing, metrics.
func (a *app) before(cmd *cobra.Command, _ []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	a.g = g

	logLevel, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logFile, err := cmd.Root().PersistentFlags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	closeLog, err := logging.Setup(logging.Options{
		Level:    logLevel,
		File:     logFile,
		Terminal: isTerminal(cmd.ErrOrStderr()),
		NoColor:  os.Getenv(envNoColor) != "",
	})
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	a.onClose(closeLog)

	color.NoColor = !a.useColor(cmd.OutOrStdout())

	session, err := setupProfiling(cmd)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	a.onClose(session.Stop)

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	a.onClose(func() error { cleanup(); return nil })
	ctx, sp := trace.Start(cmd.Context(), trace.ScopeRun, "weblint "+cmd.Name())
	a.runSpan = sp
	cmd.SetContext(ctx)

	if g.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		a.metrics = workspace.NewMetrics(reg)
		if err := a.serveMetrics(reg); err != nil {
			return &exitError{code: exitFatal, err: err}
		}
	} else {
		a.metrics = workspace.NewMetrics(nil)
	}
	return nil
}

func (a *app) serveMetrics(reg *prometheus.Registry) error {
	ln, err := net.Listen("tcp", a.g.metricsAddr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	a.onClose(srv.Close)
	return nil
}

func (a *app) useColor(out io.Writer) bool {
	return a.g.color.resolve(out, os.Getenv(envNoColor) == "")
}

// loadConfig discovers the project configuration from the working
// directory, or loads --config-path.
func (a *app) loadConfig(files *source.FileSet) (*config.Loaded, error) {
	reg := rules.Registry()
	overlay, err := config.ParseCliOverlay(a.g.configSets, files, reg)
	if err != nil {
		return nil, fmt.Errorf("--config-set: %w", err)
	}
	loader := config.NewLoader(a.fs, files, reg)
	if a.g.configPath != "" {
		return loader.LoadFile(a.g.configPath, overlay)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loader.Load(wd, overlay)
}

// openWorkspace loads the configuration and opens a workspace over it.
func (a *app) openWorkspace(env analyzer.Environment, progress workspace.ProgressSink) (*workspace.Workspace, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	files := source.NewFileSetWithBase(wd)
	stage := a.timer.Start("config")
	loaded, err := a.loadConfig(files)
	if err != nil {
		stage.Stop("failed")
		return nil, err
	}
	stage.Stop(loaded.Path)

	var cache *workspace.DiskCache
	if !a.g.noCache {
		dir := a.g.cacheDir
		if dir == "" {
			if dir, err = workspace.DefaultCacheDir("weblint"); err != nil {
				log.Warn().Err(err).Msg("result cache disabled")
			}
		}
		if dir != "" {
			if cache, err = workspace.OpenDiskCache(a.fs, dir); err != nil {
				log.Warn().Err(err).Msg("result cache disabled")
				cache = nil
			}
		}
	}
	return workspace.New(workspace.Options{
		Fs:       a.fs,
		Registry: rules.Registry(),
		Config:   loaded,
		Env:      env,
		Files:    files,
		Cache:    cache,
		Metrics:  a.metrics,
		Progress: progress,
	})
}
