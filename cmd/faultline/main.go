package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"faultline/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "faultline",
	Short: "Component error routing simulator",
	Long:  `faultline replays component failures through errorCaptured hooks, the global error handler and the console fallback`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configureColor(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
	},
}

var traceCleanup func()

// runTraceCleanup flushes the tracer once. PersistentPostRun is not called
// when a command fails, so main calls it too.
func runTraceCleanup() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

// main registers subcommands and persistent flags and executes the root
// command. If command execution returns an error, the process exits with
// status code 1.
func main() {
	// used by the automatic --version flag
	rootCmd.Version = version.Version

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(incidentsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to faultline.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|dispatch|hook|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Uint("trace-ring-size", 1024, "number of events kept by the trace ring buffer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		runTraceCleanup()
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag for output written to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}

// configureColor applies --color to fatih/color and lipgloss. In auto mode
// lipgloss keeps its own terminal detection.
func configureColor(cmd *cobra.Command) error {
	on, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !on
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch colorFlag {
	case "on":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "off":
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}
