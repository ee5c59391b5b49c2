// Package main provides the CLI entrypoint for tuireact.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/config"
	"github.com/verte-zerg/tuireact/internal/experiment"
	"github.com/verte-zerg/tuireact/internal/generator"
	"github.com/verte-zerg/tuireact/internal/logging"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/report"
	"github.com/verte-zerg/tuireact/internal/simulate"
	"github.com/verte-zerg/tuireact/internal/stats"
	"github.com/verte-zerg/tuireact/internal/store"
	"github.com/verte-zerg/tuireact/internal/tui"
)

const (
	defaultLogLevel    = "info"
	defaultCurveWindow = 5
	defaultReaction    = 280 * time.Millisecond
	defaultPremature   = 0.1
)

var (
	runSeed     int64
	runNoSave   bool
	runLogLevel string
	runLogFile  string

	statsSince       string
	statsLast        int
	statsCurveWindow int

	simSeed      int64
	simReaction  time.Duration
	simPremature float64
	simSave      bool
	simLogLevel  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuireact",
		Short:         "TUI reaction-time experiment",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runExperimentCmd,
	}

	rootCmd.Flags().Int64Var(&runSeed, "seed", 0, "stimulus delay seed (0 = time based)")
	rootCmd.Flags().BoolVar(&runNoSave, "no-save", false, "do not store the run")
	rootCmd.Flags().StringVar(&runLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&runLogFile, "log-file", "", "log file (default: data dir)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSimulateCmd())

	return rootCmd
}

func runExperimentCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := resolveRunConfig(cmd, fileCfg)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	var st *store.Store
	if cfg.Save {
		st, err = store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("failed to close db", zap.Error(cerr))
			}
		}()
	}

	gen := newGenerator(cfg.Seed)
	logger.Info("starting run", zap.Int64("seed", gen.Seed()), zap.Bool("save", cfg.Save))

	m := tui.NewModel(cfg, st, logger, experiment.NewSystemClock(), gen, gen.Seed())
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveRunConfig merges file values under explicitly set flags.
func resolveRunConfig(cmd *cobra.Command, fileCfg config.FileConfig) model.Config {
	save := !runNoSave
	if fileCfg.Run.Save != nil && !cmd.Flags().Changed("no-save") {
		save = *fileCfg.Run.Save
	}
	applyInt64Config(cmd, "seed", &runSeed, fileCfg.Run.Seed)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &runLogFile, fileCfg.Log.File)

	logFile := runLogFile
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	cfg := model.Config{
		Save:     save,
		Seed:     runSeed,
		LogLevel: runLogLevel,
		LogFile:  logFile,
	}
	if fileCfg.Display.NeutralColor != nil {
		cfg.NeutralColor = *fileCfg.Display.NeutralColor
	}
	if fileCfg.Display.ActiveColor != nil {
		cfg.ActiveColor = *fileCfg.Display.ActiveColor
	}
	return cfg
}

func newGenerator(seed int64) *generator.Generator {
	if seed == 0 {
		return generator.New()
	}
	return generator.NewSeeded(seed)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats of past runs",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := parseStatsConfig(statsSince, statsLast, statsCurveWindow)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsole(defaultLogLevel)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", zap.Error(cerr))
		}
	}()

	rep, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	logger.Debug("stats loaded", zap.Int("runs", len(rep.Runs)), zap.Int("trials", len(rep.Trials)))
	return rep.Render(cmd.OutOrStdout(), cfg.CurveWindow, stats.TerminalWidth())
}

func parseStatsConfig(since string, last, window int) (model.StatsConfig, error) {
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	cfg := model.StatsConfig{Last: last, CurveWindow: window}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the experiment headless with a scripted participant",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "stimulus delay seed (0 = time based)")
	cmd.Flags().DurationVar(&simReaction, "reaction", defaultReaction, "participant reaction time")
	cmd.Flags().Float64Var(&simPremature, "premature", defaultPremature, "probability of a premature press per color trial (0-1)")
	cmd.Flags().BoolVar(&simSave, "save", false, "store the simulated run")
	cmd.Flags().StringVar(&simLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	logger, err := logging.NewConsole(simLogLevel)
	if err != nil {
		return err
	}
	defer syncLogger(logger)

	gen := newGenerator(simSeed)
	buf := &report.Buffer{}
	startedAt := time.Now()
	res, err := simulate.Run(
		simulate.Participant{Reaction: simReaction, Premature: simPremature},
		gen,
		gen,
		report.Tee{report.NewLog(logger), buf},
	)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Info("simulation finished",
		zap.Int64("seed", gen.Seed()),
		zap.Int("reports", len(buf.Entries)),
		zap.Int64("virtual_ms", res.ElapsedMs))

	trials := experiment.Results(res.State)
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Seed: %d\n\n", gen.Seed()); err != nil {
		return err
	}
	if err := stats.RenderRun(out, trials, res.State.ErrorCount()); err != nil {
		return err
	}
	if !simSave {
		return nil
	}
	return saveSimulatedRun(cmd.Context(), logger, startedAt, res, gen.Seed(), trials)
}

func saveSimulatedRun(ctx context.Context, logger *zap.Logger, startedAt time.Time, res simulate.Result, seed int64, trials []model.TrialResult) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", zap.Error(cerr))
		}
	}()
	run := model.RunStats{
		StartedAt:  startedAt,
		EndedAt:    startedAt.Add(time.Duration(res.ElapsedMs) * time.Millisecond),
		Seed:       seed,
		ErrorCount: res.State.ErrorCount(),
	}
	id, err := st.InsertRun(ctx, run, trials)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved", zap.Int64("run_id", id))
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuireact configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# save = true                 # Store finished runs
# seed = 0                    # Stimulus delay seed (0 = time based)

[log]
# level = %q              # debug, info, warn, error
# file = %q

[display]
# neutral-color = %q     # Stimulus color while waiting
# active-color = %q      # Stimulus color to respond to
`,
		defaultLogLevel,
		config.DefaultLogPath(),
		tui.DefaultNeutralColor,
		tui.DefaultActiveColor,
	)
}

func syncLogger(logger *zap.Logger) {
	// Sync fails on non-file outputs such as a terminal stderr.
	_ = logger.Sync()
}
