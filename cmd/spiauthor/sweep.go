package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/spiauthor/internal/analysis"
	"github.com/verte-zerg/spiauthor/internal/config"
	"github.com/verte-zerg/spiauthor/internal/model"
)

const (
	defaultSweepN = "3,4,5"
	defaultSweepS = "500,1000,none"
)

var (
	sweepN    string
	sweepS    string
	sweepJobs int
)

type sweepResult struct {
	run model.Run
	dir string
	err error
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Score the disputed text for every combination of n and s",
		Args:  cobra.NoArgs,
		RunE:  runSweepCmd,
	}
	addInputFlags(cmd)
	cmd.Flags().StringVar(&sweepN, "n", defaultSweepN, "comma-separated n-gram lengths")
	cmd.Flags().StringVar(&sweepS, "s", defaultSweepS, "comma-separated profile sizes ('none' keeps all)")
	cmd.Flags().IntVar(&sweepJobs, "jobs", runtime.NumCPU(), "models scored concurrently")
	return cmd
}

func applySweepConfig(cmd *cobra.Command, cfg config.SweepConfig) {
	if len(cfg.N) > 0 {
		if flag := cmd.Flags().Lookup("n"); flag != nil && !flag.Changed {
			parts := make([]string, len(cfg.N))
			for i, n := range cfg.N {
				parts[i] = strconv.Itoa(n)
			}
			sweepN = strings.Join(parts, ",")
		}
	}
	if len(cfg.S) > 0 {
		if flag := cmd.Flags().Lookup("s"); flag != nil && !flag.Changed {
			sweepS = strings.Join(cfg.S, ",")
		}
	}
	applyIntConfig(cmd, "jobs", &sweepJobs, cfg.Jobs)
}

// sweepGrid expands the n and s lists into parameter sets, dropping repeated tags.
func sweepGrid(nList, sList string) ([]model.Params, error) {
	ns := splitList(nList)
	ss := splitList(sList)
	if len(ns) == 0 {
		return nil, fmt.Errorf("--n must list at least one value")
	}
	if len(ss) == 0 {
		return nil, fmt.Errorf("--s must list at least one value")
	}
	seen := make(map[string]struct{}, len(ns)*len(ss))
	grid := make([]model.Params, 0, len(ns)*len(ss))
	for _, n := range ns {
		for _, s := range ss {
			p, err := model.ParseParams(n, s)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[p.Tag()]; ok {
				continue
			}
			seen[p.Tag()] = struct{}{}
			grid = append(grid, p)
		}
	}
	return grid, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runSweepCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	grid, err := sweepGrid(sweepN, sweepS)
	if err != nil {
		return fmt.Errorf("%w: %w", analysis.ErrConfiguration, err)
	}
	if sweepJobs < 1 {
		return fmt.Errorf("%w: --jobs must be >= 1", analysis.ErrConfiguration)
	}
	inputs, err := loadInputs()
	if err != nil {
		return err
	}
	logger := newLogger()

	st := openHistory(logger)
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
	}

	results := make([]sweepResult, len(grid))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(sweepJobs)
	for i, params := range grid {
		g.Go(func() error {
			run, dir, err := executeRun(ctx, inputs, params, st, logger)
			results[i] = sweepResult{run: run, dir: dir, err: err}
			// Model failures are reported per line; only cancellation stops the sweep.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var firstErr error
	failed := 0
	for i, res := range results {
		tag := grid[i].Tag()
		var line string
		if res.err != nil {
			failed++
			if firstErr == nil {
				firstErr = res.err
			}
			line = fmt.Sprintf("%-12s error: %v", tag, res.err)
		} else {
			line = fmt.Sprintf("%-12s z=%6.2f  k=%-4d %s  %s", tag, res.run.DisputedZ, len(res.run.Scores), res.run.Verdict, res.dir)
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if firstErr != nil {
		return fmt.Errorf("%d of %d models failed: %w", failed, len(grid), firstErr)
	}
	return nil
}
