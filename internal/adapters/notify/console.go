package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/kenolab/internal/analysis"
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// defaultTop es la cantidad de filas que se imprimen por ranking.
const defaultTop = 10

// Console implementa ports.Reporter.
type Console struct {
	out io.Writer
	top int
}

// NewConsole crea un reporter que escribe a stdout. top <= 0 usa el default.
func NewConsole(top int) *Console {
	if top <= 0 {
		top = defaultTop
	}
	return &Console{out: os.Stdout, top: top}
}

// NewConsoleWriter crea un reporter para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, top: defaultTop}
}

// ReportResults imprime las primeras filas del ranking recibido.
func (c *Console) ReportResults(_ context.Context, title string, results []domain.BacktestResult) error {
	c.section(title)
	if len(results) == 0 {
		fmt.Fprintln(c.out, "  No results (no valid configuration produced predictions)")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "K", "Params", "Success", "95% CI", "Avg rnds", "Pat/pt", "Maint", "Profit", "Balance")
	for i, r := range results {
		if i >= c.top {
			break
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.PatternSize),
			ParamsSummary(r.Config),
			fmt.Sprintf("%.2f%%", r.SuccessRate),
			fmt.Sprintf("%.1f-%.1f", r.SuccessRateLow, r.SuccessRateHigh),
			fmt.Sprintf("%.1f", r.AvgRoundsToHit),
			fmt.Sprintf("%.1f", r.AvgPredictionsPerPoint),
			profitCell(r, fmt.Sprintf("%.1f%%", r.MaintainingRate)),
			profitCell(r, fmt.Sprintf("%+.2f", r.AvgProfit)),
			fmt.Sprintf("%.1f", r.BalanceScore),
		)
	}
	table.Render()

	if len(results) > c.top {
		fmt.Fprintf(c.out, "  ... %d more configurations\n", len(results)-c.top)
	}
	return nil
}

// PrintResult imprime el detalle de una corrida.
func (c *Console) PrintResult(r domain.BacktestResult) {
	c.section(fmt.Sprintf("%s backtest (K=%d)", r.Config.Strategy, r.PatternSize))
	fmt.Fprintf(c.out, "  Params:            %s\n", ParamsSummary(r.Config))
	fmt.Fprintf(c.out, "  Evaluation points: %d\n", r.EvaluationPoints)
	fmt.Fprintf(c.out, "  Predictions:       %d\n", r.TotalPredictions)
	fmt.Fprintf(c.out, "  Completions:       %d\n", r.TotalCompletions)
	fmt.Fprintf(c.out, "  Success rate:      %.2f%% (95%% CI %.2f-%.2f)\n", r.SuccessRate, r.SuccessRateLow, r.SuccessRateHigh)
	fmt.Fprintf(c.out, "  Avg rounds to hit: %.2f\n", r.AvgRoundsToHit)
	if r.Config.Strategy == domain.StrategyMomentum {
		fmt.Fprintf(c.out, "  Pattern changes:   %d\n", r.PatternChanges)
	} else {
		fmt.Fprintf(c.out, "  Patterns/point:    %.2f\n", r.AvgPredictionsPerPoint)
	}
	if r.ProfitTracked {
		fmt.Fprintf(c.out, "  Maintaining:       %d (%.2f%%)\n", r.TotalMaintaining, r.MaintainingRate)
		fmt.Fprintf(c.out, "  Avg profit:        %+.2f bets (%s)\n", r.AvgProfit, r.Config.Difficulty)
	}
	fmt.Fprintf(c.out, "  Balance score:     %.2f\n", r.BalanceScore)
	fmt.Fprintf(c.out, "  Elapsed:           %s\n", r.Elapsed.Round(time.Millisecond))
}

// PrintNumberStats imprime la foto de momentum de los 40 números, hot primero.
func (c *Console) PrintNumberStats(stats []domain.NumberStat) {
	c.section("Number momentum")
	if len(stats) == 0 {
		fmt.Fprintln(c.out, "  Not enough history to compute momentum")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Number", "Recent", "Baseline", "Momentum", "Hot")
	for _, s := range stats {
		hot := ""
		if s.Hot {
			hot = "yes"
		}
		table.Append(
			fmt.Sprintf("%d", s.Number),
			fmt.Sprintf("%d", s.RecentCount),
			fmt.Sprintf("%d", s.BaselineCount),
			momentumCell(s.Momentum),
			hot,
		)
	}
	table.Render()
}

// ReportAnalysis imprime el análisis de un archivo de resultados.
func (c *Console) ReportAnalysis(report analysis.Report) {
	for _, size := range report.Sizes {
		c.section(fmt.Sprintf("%s (%d runs)", size.Key, size.Runs))
		c.highlight("Best success rate", size.Best)
		c.highlight("Fastest completion", size.Fastest)
		c.highlight("Best balanced", size.Balanced)
		c.highlight("Most profitable", size.Profitable)
		c.highlight("Most selective", size.Selective)

		if len(size.SampleImpact) > 0 {
			table := tablewriter.NewWriter(c.out)
			table.Header("Sample", "Avg success", "Tests")
			for _, si := range size.SampleImpact {
				table.Append(
					fmt.Sprintf("%d", si.SampleSize),
					fmt.Sprintf("%.2f%%", si.AvgSuccess),
					fmt.Sprintf("%d", si.Tests),
				)
			}
			table.Render()
		}
	}

	if len(report.Comparison) > 1 {
		c.section("Pattern size comparison")
		table := tablewriter.NewWriter(c.out)
		table.Header("K", "Success", "Avg rnds", "Pat/pt", "Exp hits", "Params")
		for _, cmp := range report.Comparison {
			table.Append(
				fmt.Sprintf("%d", cmp.PatternSize),
				fmt.Sprintf("%.2f%%", cmp.SuccessRate),
				fmt.Sprintf("%.1f", cmp.AvgRounds),
				fmt.Sprintf("%.1f", cmp.AvgPatterns),
				fmt.Sprintf("%.2f", cmp.ExpectedHits),
				ParamsSummary(cmp.Config),
			)
		}
		table.Render()
	}

	c.section("Recommendations")
	rec := report.Recommendations
	c.highlight("Highest success", rec.HighestSuccess)
	c.highlight("Best balance", rec.BestBalance)
	c.highlight("Cleanest signal", rec.CleanestSignal)
}

func (c *Console) highlight(label string, r *domain.BacktestResult) {
	if r == nil {
		fmt.Fprintf(c.out, "  %-20s -\n", label+":")
		return
	}
	fmt.Fprintf(c.out, "  %-20s K=%d %s | %.2f%% | %.1f rnds | %.1f pat/pt | bal %.1f",
		label+":", r.PatternSize, ParamsSummary(r.Config),
		r.SuccessRate, r.AvgRoundsToHit, r.AvgPredictionsPerPoint, r.BalanceScore)
	if r.ProfitTracked {
		fmt.Fprintf(c.out, " | profit %+.2f", r.AvgProfit)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) section(title string) {
	fmt.Fprintf(c.out, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}

// ParamsSummary resume los parámetros relevantes de una config en una línea.
func ParamsSummary(cfg domain.BacktestConfig) string {
	if cfg.Strategy == domain.StrategyMomentum {
		return fmt.Sprintf("det=%d base=%d thr=%.2f ref=%d pool=%d",
			cfg.DetectionWindow, cfg.BaselineWindow, cfg.MomentumThreshold, cfg.RefreshFrequency, cfg.TopNPool)
	}
	s := fmt.Sprintf("sample=%d hits=%d-%d", cfg.SampleSize, cfg.MinHits, cfg.MaxHits)
	if cfg.NotHitIn > 0 {
		s += fmt.Sprintf(" nothit=%d", cfg.NotHitIn)
	}
	if cfg.UseRecency {
		s += fmt.Sprintf(" decay=%.2f", cfg.DecayFactor)
	}
	return s
}

func profitCell(r domain.BacktestResult, v string) string {
	if !r.ProfitTracked {
		return "-"
	}
	return v
}

func momentumCell(m domain.Momentum) string {
	if m.Unbounded {
		return "inf"
	}
	return fmt.Sprintf("%.2f", m.Ratio)
}
