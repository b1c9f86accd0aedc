// Package logging configures the global zerolog logger used by every
// weblint package through github.com/rs/zerolog/log.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the level when no flag is given.
const EnvLevel = "WEBLINT_LOG_LEVEL"

// Level represents log levels.
type Level = zerolog.Level

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Pretty enables human-readable console output.
	Pretty bool
	// NoColor disables colors of the console writer.
	NoColor    bool
	TimeFormat string
}

// DefaultConfig logs warnings and above to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.WarnLevel,
		Output:     os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// Init replaces the global logger.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor,
		}
	}
	log.Logger = zerolog.New(output).Level(cfg.Level).With().Timestamp().Logger()
}

// ParseLevel parses a log level string (case-insensitive).
// Supported values: trace, debug, info, warn, error, fatal, off.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "", "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "fatal":
		return zerolog.FatalLevel, nil
	case "off", "none", "disabled":
		return zerolog.Disabled, nil
	}
	return zerolog.WarnLevel, fmt.Errorf("invalid log level %q (expected trace|debug|info|warn|error|fatal|off)", level)
}

// Options are the CLI-facing logging settings.
type Options struct {
	Level    string // flag value; empty falls back to EnvLevel
	File     string // log file; empty means stderr
	Terminal bool   // stderr is a terminal
	NoColor  bool
}

// Setup initialises the global logger from CLI options and returns a
// function that closes the log file, if one was opened.
func Setup(opts Options) (func() error, error) {
	levelStr := opts.Level
	if levelStr == "" {
		levelStr = os.Getenv(EnvLevel)
	}
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.NoColor = opts.NoColor
	closer := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cfg.Output = f
		closer = f.Close
	} else {
		cfg.Pretty = opts.Terminal
	}
	Init(cfg)
	return closer, nil
}
