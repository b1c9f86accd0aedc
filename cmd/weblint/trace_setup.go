package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weblint/internal/trace"
)

type traceFlags struct {
	output, level, mode, format string
	ringSize                    int
	heartbeat                   time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	flags := cmd.Root().PersistentFlags()
	var tf traceFlags
	var err error
	for name, dst := range map[string]*string{
		"trace":        &tf.output,
		"trace-level":  &tf.level,
		"trace-mode":   &tf.mode,
		"trace-format": &tf.format,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return tf, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	return tf, nil
}

// setupTracing attaches the tracer selected by the --trace flags to the
// command context and returns the function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && tf.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	cfg := trace.Config{Level: level, Path: tf.output, RingSize: tf.ringSize}
	if cfg.Mode, err = trace.ParseMode(tf.mode); err != nil {
		return nil, err
	}
	if cfg.Format, err = trace.ParseFormat(tf.format); err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	heartbeat := trace.StartHeartbeat(tracer, tf.heartbeat)
	errOut := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceRing prints the ring buffer after a run fails.
func dumpTraceRing(cmd *cobra.Command) {
	ring := trace.RingOf(trace.FromContext(cmd.Context()))
	if ring == nil {
		return
	}
	errOut := cmd.ErrOrStderr()
	if n := ring.Dropped(); n > 0 {
		fmt.Fprintf(errOut, "trace: last events before failure (%d older dropped):\n", n)
	} else {
		fmt.Fprintln(errOut, "trace: last events before failure:")
	}
	if err := ring.Dump(errOut, trace.FormatText); err != nil {
		fmt.Fprintf(errOut, "trace: dump: %v\n", err)
	}
}
