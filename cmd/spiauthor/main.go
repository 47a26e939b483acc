// Package main provides the CLI entrypoint for spiauthor.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/spiauthor/internal/analysis"
	"github.com/verte-zerg/spiauthor/internal/artifact"
	"github.com/verte-zerg/spiauthor/internal/config"
	"github.com/verte-zerg/spiauthor/internal/corpus"
	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/stats"
	"github.com/verte-zerg/spiauthor/internal/store"
)

var (
	knownPath    string
	disputedPath string
	resultsDir   string
	noHistory    bool
	quiet        bool
	verbose      bool

	plotWidth  int
	plotHeight int
	plotColor  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(analysis.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spiauthor",
		Short:         "Authorship attribution with normalized SPI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&resultsDir, "results", config.DefaultResultsDir(), "root directory for run artifacts")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress lines on stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.PersistentFlags().IntVar(&plotWidth, "plot-width", 0, "density plot width in cells (0: terminal width)")
	rootCmd.PersistentFlags().IntVar(&plotHeight, "plot-height", 12, "density plot height in rows")
	rootCmd.PersistentFlags().BoolVar(&plotColor, "color", false, "force colored plot output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSweepCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&knownPath, "known", "", "known corpus: .zip archive, directory or document")
	cmd.Flags().StringVar(&disputedPath, "disputed", "", "disputed document (.txt, .pdf or .docx)")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <n> <s>",
		Short: "Score the disputed text for one n-gram length and profile size",
		Long: "Score the disputed text against fragments of the known corpus.\n" +
			"n is the n-gram length; s is the profile size, or 'none' to keep every n-gram.",
		Args: cobra.ExactArgs(2),
		RunE: runRunCmd,
	}
	addInputFlags(cmd)
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	params, err := model.ParseParams(args[0], args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", analysis.ErrConfiguration, err)
	}
	inputs, err := loadInputs()
	if err != nil {
		return err
	}
	logger := newLogger()
	ctx := cmd.Context()

	st := openHistory(logger)
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	run, dir, err := executeRun(ctx, inputs, params, st, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, run); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderFragmentTable(out, run); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	density := stats.BuildDensity(run.Tag, run.Distribution, run.FragmentZ(), run.DisputedZ)
	if err := stats.PlotDensityWithColor(out, density, plotWidth, plotHeight, plotColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	progressf("Artifacts written to %s\n", dir)
	return nil
}

// executeRun scores one model, commits its artifacts and records it in st when
// st is not nil. History failures are logged, never returned.
func executeRun(ctx context.Context, inputs analysis.Inputs, params model.Params, st *store.Store, logger *slog.Logger) (model.Run, string, error) {
	run, err := analysis.Run(inputs, params, logger)
	if err != nil {
		return model.Run{}, "", err
	}
	progressf("Model %s: fragment size %d chars, %d fragments of %d words\n",
		run.Tag, run.Disputed.Runes, len(run.Fragments), run.Fragments[0].Words)

	writer := artifact.Writer{Root: resultsDir, PlotWidth: plotWidth, PlotHeight: plotHeight}
	dir, err := writer.Write(ctx, run)
	if err != nil {
		return model.Run{}, "", err
	}
	if st != nil {
		if _, err := st.InsertRun(ctx, run, resultsDir); err != nil {
			logger.Warn("failed to record run in history", "tag", run.Tag, "err", err)
		}
	}
	return run, dir, nil
}

func loadInputs() (analysis.Inputs, error) {
	if strings.TrimSpace(knownPath) == "" {
		return analysis.Inputs{}, fmt.Errorf("%w: --known is required", analysis.ErrInput)
	}
	if strings.TrimSpace(disputedPath) == "" {
		return analysis.Inputs{}, fmt.Errorf("%w: --disputed is required", analysis.ErrInput)
	}
	known, err := corpus.LoadKnown(config.ExpandHome(knownPath))
	if err != nil {
		return analysis.Inputs{}, err
	}
	disputed, err := corpus.LoadDisputed(config.ExpandHome(disputedPath))
	if err != nil {
		return analysis.Inputs{}, err
	}
	progressf("Known corpus: %d documents | disputed text: %s\n", len(known.Source.Documents), disputed.Source.Path)
	return analysis.Inputs{Known: known, Disputed: disputed}, nil
}

func loadSettings(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("%w: failed to load config: %w", analysis.ErrConfiguration, err)
	}
	applyStringConfig(cmd, "known", &knownPath, fileCfg.Inputs.Known)
	applyStringConfig(cmd, "disputed", &disputedPath, fileCfg.Inputs.Disputed)
	applyStringConfig(cmd, "results", &resultsDir, fileCfg.Output.ResultsDir)
	if fileCfg.Output.History != nil && !cmd.Flags().Changed("no-history") {
		noHistory = !*fileCfg.Output.History
	}
	applyIntConfig(cmd, "plot-width", &plotWidth, fileCfg.Plot.Width)
	applyIntConfig(cmd, "plot-height", &plotHeight, fileCfg.Plot.Height)
	applyBoolConfig(cmd, "color", &plotColor, fileCfg.Plot.Color)
	applySweepConfig(cmd, fileCfg.Sweep)
	resultsDir = config.ExpandHome(resultsDir)
	return nil
}

func openHistory(logger *slog.Logger) *store.Store {
	if noHistory {
		return nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logger.Warn("history disabled: failed to open db", "path", config.DefaultDBPath(), "err", err)
		return nil
	}
	return st
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
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
	if _, err := config.EnsureConfig(path); err != nil {
		return err
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

var progressOut io.Writer = os.Stderr

func progressf(format string, args ...any) {
	if quiet {
		return
	}
	if _, err := fmt.Fprintf(progressOut, format, args...); err != nil {
		// Best-effort progress output.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
