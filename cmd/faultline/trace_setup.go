package main

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"faultline/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// Flags left at their defaults fall back to the [trace] table of
// faultline.toml. It returns a cleanup function and an error if
// initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	flags := root.PersistentFlags()

	file, err := loadFileConfig(cmd)
	if err != nil {
		return nil, err
	}

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !flags.Changed("trace") && file.Trace.Output != "" {
		traceOutput = file.Trace.Output
	}

	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !flags.Changed("trace-level") && file.Trace.Level != "" {
		levelStr = file.Trace.Level
	}

	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if !flags.Changed("trace-mode") && file.Trace.Mode != "" {
		modeStr = file.Trace.Mode
	}

	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	ringFlag, err := flags.GetUint("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	ringSize, err := safecast.Conv[int](ringFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid trace-ring-size: %w", err)
	}
	if !flags.Changed("trace-ring-size") && file.Trace.RingSize > 0 {
		ringSize = file.Trace.RingSize
	}

	// Parse level
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && traceOutput == "" {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return func() {}, nil
	}
	// An output file without a level traces terminal decisions only
	if level == trace.LevelOff {
		level = trace.LevelError
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	if traceOutput != "" && mode == trace.ModeRing {
		mode = trace.ModeBoth
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
