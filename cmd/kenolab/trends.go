package main

import (
	"context"
	"flag"
	"slices"

	"github.com/alejandrodnm/kenolab/internal/adapters/notify"
	"github.com/alejandrodnm/kenolab/internal/analysis"
)

// behaviorLimit acota cada categoría del informe de comportamiento.
const behaviorLimit = 10

func runTrends(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trends", flag.ContinueOnError)
	var g globalFlags
	var d dataFlags
	g.register(fs)
	d.register(fs)
	patternSize := fs.Int("pattern-size", 5, "pattern size for the behaviour analysis")
	minOccurrences := fs.Int("min-occurrences", 10, "minimum appearances for a pattern to be analyzed")
	follow := fs.Int("follow", 0, "number whose follow-ups are shown (0: the one with the longest gap)")
	pairs := fs.Int("pairs", 15, "top pairs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.Arg(0) != "" {
		d.dataFile = fs.Arg(0)
	}

	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if err := d.validate(); err != nil {
		return err
	}
	history, err := loadHistory(ctx, cfg, d)
	if err != nil {
		return err
	}

	behavior, err := analysis.AnalyzeBehavior(history, analysis.BehaviorOptions{
		PatternSize:    *patternSize,
		MinOccurrences: *minOccurrences,
		Limit:          behaviorLimit,
	})
	if err != nil {
		return err
	}

	console := notify.NewConsole(cfg.Backtest.TopResults)
	streaks := analysis.Streaks(history)
	console.PrintStreaks(streaks)
	coverage := analysis.CoverageOf(history)
	console.PrintCoverage(coverage)
	console.PrintAppearanceOrder(coverage)
	console.PrintRareLeadUps(analysis.RareLeadUps(history, coverage, analysis.DefaultLeadUpOptions()))
	console.PrintPairs(analysis.TopPairs(history, *pairs))

	number := *follow
	if number == 0 && len(streaks) > 0 {
		coldest := slices.MaxFunc(streaks, func(a, b analysis.Streak) int { return a.MaxGap - b.MaxGap })
		number = coldest.Number
	}
	console.PrintFollowUps(number, analysis.FollowUps(history, number, 10))
	console.PrintBehavior(*patternSize, behavior)
	return nil
}
