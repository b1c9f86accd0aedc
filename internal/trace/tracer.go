package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode selects the sinks New builds. It is a bit set.
type StorageMode uint8

const (
	ModeStream StorageMode = 1 << iota // write every event as it happens
	ModeRing                           // keep the last events for a dump on failure
	ModeBoth   = ModeStream | ModeRing
)

var modeNames = map[string]StorageMode{"stream": ModeStream, "ring": ModeRing, "both": ModeBoth}

func (m StorageMode) String() string {
	for name, v := range modeNames {
		if v == m {
			return name
		}
	}
	return "unknown"
}

// ParseMode accepts stream, ring or both.
func ParseMode(s string) (StorageMode, error) {
	if m, ok := modeNames[strings.ToLower(s)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

// Config describes the tracer built from the --trace flags.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format
	// Output takes precedence over Path. An empty Path or "-" is stderr.
	Output   io.Writer
	Path     string
	RingSize int
}

// New returns Nop for LevelOff, a single sink when Mode selects one, and a
// MultiTracer otherwise.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	var sinks []Tracer
	if cfg.Mode&ModeStream != 0 {
		w, err := cfg.writer()
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, formatFor(cfg.Format, cfg.Path)))
	}
	if cfg.Mode&ModeRing != 0 {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	switch len(sinks) {
	case 0:
		return nil, errors.New("trace: no storage mode selected")
	case 1:
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

func (cfg Config) writer() (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.Path == "" || cfg.Path == "-":
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// ownsWriter is false for the process's standard streams.
func ownsWriter(w io.Writer) bool {
	return !slices.Contains([]io.Writer{os.Stdout, os.Stderr}, w)
}

// RingOf returns the ring buffer behind t, if any.
func RingOf(t Tracer) *RingTracer {
	switch tt := t.(type) {
	case *RingTracer:
		return tt
	case *MultiTracer:
		return tt.Ring()
	}
	return nil
}
