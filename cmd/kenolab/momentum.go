package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/alejandrodnm/kenolab/internal/adapters/notify"
	"github.com/alejandrodnm/kenolab/internal/backtest"
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/alejandrodnm/kenolab/internal/strategy"
)

func runMomentum(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("momentum", flag.ContinueOnError)
	var g globalFlags
	var d dataFlags
	g.register(fs)
	d.register(fs)

	// 0 = valor de la config.
	patternSize := fs.Int("pattern-size", 0, "numbers per pattern")
	detection := fs.Int("detection-window", 0, "recent window in rounds")
	baseline := fs.Int("baseline-window", 0, "baseline window in rounds")
	threshold := fs.Float64("momentum-threshold", 0, "minimum momentum to be hot")
	refresh := fs.Int("refresh-frequency", 0, "rounds between pattern refreshes")
	pool := fs.Int("top-n-pool", 0, "hot numbers considered per refresh")
	lookahead := fs.Int("lookahead", 0, "rounds evaluated after each prediction")
	stride := fs.Int("stride", 0, "rounds between evaluation points (0: refresh frequency)")
	optimize := fs.Bool("optimize", false, "run the momentum parameter grid")
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

	base := cfg.Momentum
	setIfPositive(&base.PatternSize, *patternSize)
	setIfPositive(&base.DetectionWindow, *detection)
	setIfPositive(&base.BaselineWindow, *baseline)
	setIfPositive(&base.RefreshFrequency, *refresh)
	setIfPositive(&base.TopNPool, *pool)
	setIfPositive(&base.Lookahead, *lookahead)
	setIfPositive(&base.Stride, *stride)
	if *threshold > 0 {
		base.MomentumThreshold = *threshold
	}
	base.TrackMaintaining = d.trackMaintaining
	base.Difficulty = d.difficulty
	if err := base.Validate(); err != nil {
		return err
	}

	history, err := loadHistory(ctx, cfg, d)
	if err != nil {
		return err
	}
	payouts, err := loadPayouts(ctx, cfg, d)
	if err != nil {
		return err
	}

	runner := backtest.NewRunner(history, payouts, backtest.WithBalanceReference(cfg.Backtest.BalanceReference))
	console := notify.NewConsole(cfg.Backtest.TopResults)

	if *optimize {
		configs := backtest.DefaultMomentumGrid().Configs(base)
		results, runErr := runner.RunGrid(ctx, configs, backtest.GridOptions{
			Workers:        cfg.Backtest.Workers,
			Label:          "momentum",
			ProgressOutput: os.Stderr,
		})
		if len(results) > 0 {
			if err := console.ReportResults(ctx, "Momentum grid: top configurations", results); err != nil {
				slog.Warn("report failed", "err", err)
			}
			set := domain.ResultSet{
				Name:   domain.MomentumName(true),
				Groups: map[string][]domain.BacktestResult{"grid": results},
			}
			if err := saveResults(cfg, set); err != nil {
				return err
			}
		}
		return runErr
	}

	result, err := runner.Run(ctx, base)
	if err != nil {
		return err
	}
	console.PrintResult(result)

	if stats, ok := domain.NumberStats(history, base.DetectionWindow, base.BaselineWindow, base.MomentumThreshold); ok {
		console.PrintNumberStats(stats)
	}
	next := strategy.NewMomentumGenerator(strategy.MomentumConfigFrom(base)).Pattern(history, len(history))
	fmt.Printf("\nNext pattern: %s\n", next)

	return saveResults(cfg, domain.ResultSet{
		Name:   domain.MomentumName(false),
		Groups: map[string][]domain.BacktestResult{"single": {result}},
		Single: true,
	})
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
