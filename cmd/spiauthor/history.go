package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/spiauthor/internal/analysis"
	"github.com/verte-zerg/spiauthor/internal/artifact"
	"github.com/verte-zerg/spiauthor/internal/config"
	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/reportui"
	"github.com/verte-zerg/spiauthor/internal/stats"
	"github.com/verte-zerg/spiauthor/internal/store"
)

var (
	historyTag  string
	historyLast int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyTag, "tag", "", "only runs of this model tag")
	cmd.Flags().IntVar(&historyLast, "last", 20, "limit to last N runs (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("%w: --last must be >= 0", analysis.ErrConfiguration)
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	runs, err := st.ListRuns(cmd.Context(), store.Filter{Tag: historyTag, Limit: historyLast})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return stats.RenderHistory(cmd.OutOrStdout(), runs)
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [tag]",
		Short: "Browse a committed run (latest when no tag is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	tag := ""
	if len(args) == 1 {
		tag = args[0]
	}
	run, history, err := loadShowRun(cmd, tag)
	if err != nil {
		return err
	}

	ui := reportui.NewModel(run, history, plotColor)
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
	}
	return nil
}

// loadShowRun resolves the run to display from its committed manifest. Without a
// tag the latest recorded run is used. History is best-effort.
func loadShowRun(cmd *cobra.Command, tag string) (model.Run, []model.RunSummary, error) {
	root := resultsDir
	var history []model.RunSummary

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		if tag == "" {
			return model.Run{}, nil, fmt.Errorf("%w: no tag given and history is unavailable: %w", analysis.ErrInput, err)
		}
	} else {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		if tag == "" {
			latest, err := st.LatestRun(cmd.Context(), "")
			if errors.Is(err, store.ErrNotFound) {
				return model.Run{}, nil, fmt.Errorf("%w: no runs recorded yet; pass a tag such as n4_L1000", analysis.ErrInput)
			}
			if err != nil {
				return model.Run{}, nil, fmt.Errorf("failed to load latest run: %w", err)
			}
			tag = latest.Tag
			if !cmd.Flags().Changed("results") && latest.ResultsDir != "" {
				root = latest.ResultsDir
			}
		}
		history, err = st.ListRuns(cmd.Context(), store.Filter{Tag: tag})
		if err != nil {
			logErrf("failed to load history for %s: %v\n", tag, err)
			history = nil
		}
	}

	manifest, err := artifact.ReadManifest(root, tag)
	if err != nil {
		return model.Run{}, nil, fmt.Errorf("%w: no committed artifacts for %s under %s: %w", analysis.ErrInput, tag, root, err)
	}
	run, err := manifest.Run()
	if err != nil {
		return model.Run{}, nil, fmt.Errorf("%w: %w", analysis.ErrInput, err)
	}
	return run, history, nil
}
