package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/kenolab/internal/adapters/notify"
	"github.com/alejandrodnm/kenolab/internal/backtest"
	"github.com/alejandrodnm/kenolab/internal/domain"
)

// Tamaños de patrón que acepta el optimizador.
const (
	minOptimizeSize = 3
	maxOptimizeSize = 10
)

func runOptimize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	var g globalFlags
	var d dataFlags
	g.register(fs)
	d.register(fs)

	sizes := intList{5}
	fs.Var(&sizes, "pattern-sizes", "comma separated pattern sizes to test (3-10)")
	var recency bool
	fs.BoolVar(&recency, "recency-weight", false, "weight pattern occurrences by recency")
	fs.BoolVar(&recency, "r", false, "shorthand for --recency-weight")
	decay := fs.Float64("decay", 0.98, "decay factor for recency weighting, in (0,1)")
	workers := fs.Int("workers", 0, "parallel runs (0: config value)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if err := d.validate(); err != nil {
		return err
	}
	if recency && (*decay <= 0 || *decay >= 1) {
		return fmt.Errorf("%w: --decay %.3f must be in (0,1)", domain.ErrInvalidConfig, *decay)
	}
	setIfPositive(&cfg.Backtest.Workers, *workers)

	history, err := loadHistory(ctx, cfg, d)
	if err != nil {
		return err
	}
	payouts, err := loadPayouts(ctx, cfg, d)
	if err != nil {
		return err
	}
	if recency {
		slog.Info("recency weighting enabled", "decay", *decay)
	}

	runner := backtest.NewRunner(history, payouts, backtest.WithBalanceReference(cfg.Backtest.BalanceReference))
	console := notify.NewConsole(cfg.Backtest.TopResults)

	groups := make(map[string][]domain.BacktestResult)
	var runErr error
	for _, size := range sizes {
		if size < minOptimizeSize || size > maxOptimizeSize {
			slog.Warn("skipping pattern size", "pattern_size", size, "allowed", fmt.Sprintf("%d-%d", minOptimizeSize, maxOptimizeSize))
			continue
		}

		base := cfg.Pattern
		base.PatternSize = size
		base.UseRecency = recency
		base.DecayFactor = *decay
		base.TrackMaintaining = d.trackMaintaining
		base.Difficulty = d.difficulty

		configs := backtest.DefaultPatternGrid(size).Configs(base)
		results, err := runner.RunGrid(ctx, configs, backtest.GridOptions{
			Workers:        cfg.Backtest.Workers,
			Label:          fmt.Sprintf("pattern_size=%d", size),
			ProgressOutput: os.Stderr,
		})
		if len(results) > 0 {
			groups[domain.SizeKey(size)] = results
			title := fmt.Sprintf("Pattern size %d: top configurations", size)
			if err := console.ReportResults(ctx, title, results); err != nil {
				slog.Warn("report failed", "err", err)
			}
		}
		if err != nil {
			// Cancelación: se guardan los tamaños ya completados.
			runErr = err
			break
		}
	}

	if len(groups) == 0 {
		return errors.Join(runErr, fmt.Errorf("%w: no pattern size produced results", domain.ErrInvalidConfig))
	}
	set := domain.ResultSet{
		Name:   domain.OptimizationName(sizes, d.difficulty, d.trackMaintaining),
		Groups: groups,
	}
	if err := saveResults(cfg, set); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
