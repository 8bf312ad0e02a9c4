package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"faultline/internal/config"
	"faultline/internal/incident"
	"faultline/internal/observ"
	"faultline/internal/scenario"
	"faultline/internal/trace"
	"faultline/internal/ui"
)

var (
	simulateJobs    int
	simulateJournal string
	simulateVerbose bool
	simulateTimings bool
)

func init() {
	simulateCmd.Flags().IntVar(&simulateJobs, "jobs", 0, "number of scenarios to run in parallel (0 = GOMAXPROCS)")
	simulateCmd.Flags().StringVar(&simulateJournal, "journal", "", "record terminal errors in this journal directory (\"auto\" for the user cache)")
	simulateCmd.Flags().BoolVar(&simulateTimings, "timings", false, "print how long each phase took")
	simulateCmd.Flags().BoolVarP(&simulateVerbose, "verbose", "v", false, "print the console output of every scenario")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [files or dirs...]",
	Short: "Replay scenario files through the error pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	file, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	timer := observ.NewTimer()
	if simulateTimings {
		defer func() { fmt.Fprint(cmd.ErrOrStderr(), timer.Summary()) }()
	}

	var paths []string
	if err := timer.Track("collect", func() error {
		paths, err = collectScenarioPaths(args)
		return err
	}); err != nil {
		return err
	}

	tracer := trace.FromContext(cmd.Context())
	opts := scenario.Options{
		Tracer:   tracer,
		Defaults: scenario.ConfigDecl{Mode: file.Mode, Env: file.Env, Silent: file.Silent},
	}

	journalDir := simulateJournal
	if journalDir == "" {
		journalDir = file.Journal.Dir
	}
	if journalDir != "" {
		j, err := openJournal(journalDir)
		if err != nil {
			return err
		}
		opts.Journal = j
	}

	var results []*scenario.Result
	if err := timer.Track("run", func() error {
		results, err = scenario.RunAll(cmd.Context(), paths, simulateJobs, opts)
		return err
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderIdx := timer.Begin("render")
	fmt.Fprint(out, ui.ResultsTable(results, terminalWidth()))

	failed := 0
	rethrown := false
	for _, res := range results {
		if simulateVerbose && res.Console != "" {
			fmt.Fprintf(out, "\n--- %s\n%s", res.Name, res.Console)
		}
		if res.Rethrown != nil {
			rethrown = true
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: re-raised: %v\n", res.Name, res.Rethrown)
		}
		if err := res.Check(); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}

	timer.End(renderIdx, fmt.Sprintf("%d scenarios", len(results)))

	if rethrown {
		if ring, ok := trace.Ring(tracer); ok {
			if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
	}

	if failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
	}
	return nil
}

// collectScenarioPaths expands directories into the scenario files they hold.
func collectScenarioPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", arg, err)
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !scenario.IsScenarioFile(e.Name()) || e.Name() == config.FileName {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return paths, nil
}

func openJournal(dir string) (*incident.Journal, error) {
	if dir == "auto" {
		return incident.OpenDefault("faultline")
	}
	return incident.Open(dir)
}

func terminalWidth() int {
	if !isTerminal(os.Stdout) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
