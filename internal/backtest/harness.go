package backtest

// harness.go: recorrido de evaluación sobre la historia.
//
// En cada punto idx (desde cfg.StartIndex(), cada cfg.Step() rondas, mientras
// queden cfg.Lookahead rondas futuras):
//  1. la Source produce patrones a partir de history[:idx]
//  2. el Filter los reduce con las ventanas sample y tracking (solo estrategia pattern)
//  3. cada patrón superviviente se evalúa contra history[idx:idx+lookahead]
//  4. se acumulan predicciones, completados, maintaining y profit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/alejandrodnm/kenolab/internal/strategy"
)

// SourceFactory crea una Source nueva para cada corrida.
type SourceFactory func(cfg domain.BacktestConfig) (strategy.Source, error)

// Runner ejecuta backtests sobre una historia fija. La historia y la tabla de
// pagos son de solo lectura, así que un Runner puede usarse desde varias
// goroutines a la vez.
type Runner struct {
	history   []domain.Round
	drawn     []domain.NumberSet
	payouts   domain.PayoutTable
	newSource SourceFactory
	reference float64
}

// RunnerOption configura un Runner.
type RunnerOption func(*Runner)

// WithSourceFactory reemplaza la construcción de la Source (tests, estrategias propias).
func WithSourceFactory(f SourceFactory) RunnerOption {
	return func(r *Runner) { r.newSource = f }
}

// WithBalanceReference cambia la constante del balance score.
func WithBalanceReference(ref float64) RunnerOption {
	return func(r *Runner) { r.reference = ref }
}

// NewRunner crea un Runner. payouts puede ser nil si ninguna corrida
// registra rentabilidad.
func NewRunner(history []domain.Round, payouts domain.PayoutTable, opts ...RunnerOption) *Runner {
	r := &Runner{
		history: history,
		drawn:   domain.DrawnSets(history),
		payouts: payouts,
		newSource: func(cfg domain.BacktestConfig) (strategy.Source, error) {
			return strategy.New(cfg)
		},
		reference: domain.DefaultBalanceReference,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Len devuelve la cantidad de rondas de la historia.
func (r *Runner) Len() int { return len(r.history) }

// Run ejecuta una corrida completa para cfg.
// Si ctx se cancela devuelve el error del contexto y un resultado vacío.
func (r *Runner) Run(ctx context.Context, cfg domain.BacktestConfig) (domain.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %w", err)
	}
	if cfg.TrackMaintaining && r.payouts == nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %w: profit tracking requires a payout table", domain.ErrInvalidConfig)
	}

	source, err := r.newSource(cfg)
	if err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: build source: %w", err)
	}

	var payouts domain.PayoutTable
	if cfg.TrackMaintaining {
		payouts = r.payouts
	}

	acc := accumulator{started: time.Now()}
	momentum := cfg.Strategy == domain.StrategyMomentum
	filter := NewFilter(FilterConfigFrom(cfg))
	var lastPattern domain.NumberSet

	for idx := cfg.StartIndex(); idx < len(r.history)-cfg.Lookahead; idx += cfg.Step() {
		if err := ctx.Err(); err != nil {
			return domain.BacktestResult{}, err
		}

		// Capacidad acotada: la Source no puede ver history[idx:] ni vía append.
		prefix := r.history[:idx:idx]
		patterns, err := source.Patterns(prefix, idx)
		if err != nil {
			return domain.BacktestResult{}, fmt.Errorf("backtest.Run: patterns at round %d: %w", idx, err)
		}

		if momentum {
			if len(patterns) > 0 && patterns[0].Pattern != lastPattern {
				acc.patternChanges++
				lastPattern = patterns[0].Pattern
			}
		} else {
			if len(patterns) == 0 {
				continue
			}
			sample := r.drawn[max(0, idx-cfg.SampleSize):idx]
			tracking := r.drawn[max(0, idx-cfg.TrackingWindow):idx]
			patterns = filter.Apply(patterns, sample, tracking)
			if len(patterns) == 0 {
				continue
			}
		}

		evaluated := 0
		for _, p := range patterns {
			out, ok := EvaluateAt(p.Pattern, r.drawn, idx, cfg.Lookahead, payouts, cfg.Difficulty)
			if !ok {
				break
			}
			acc.add(out)
			evaluated++
		}
		if evaluated > 0 {
			acc.points++
		}
	}

	res := acc.finalize(cfg, r.reference)
	slog.Debug("backtest complete",
		"strategy", source.Name(),
		"pattern_size", cfg.PatternSize,
		"points", res.EvaluationPoints,
		"predictions", res.TotalPredictions,
		"success_rate", res.SuccessRate,
	)
	return res, nil
}

// accumulator suma los outcomes de una corrida. Solo crece mientras dura Run.
type accumulator struct {
	started        time.Time
	points         int
	predictions    int
	completions    int
	maintaining    int
	patternChanges int
	rounds         []float64
	profits        []float64
}

func (a *accumulator) add(o Outcome) {
	a.predictions++
	if o.Completed {
		a.completions++
		a.rounds = append(a.rounds, float64(o.RoundsToHit))
	}
	if o.Tracked {
		a.profits = append(a.profits, o.Profit)
		if o.Maintaining() {
			a.maintaining++
		}
	}
}

func (a *accumulator) finalize(cfg domain.BacktestConfig, reference float64) domain.BacktestResult {
	res := domain.BacktestResult{
		RunID:            uuid.New().String(),
		Config:           cfg,
		PatternSize:      cfg.PatternSize,
		StartedAt:        a.started,
		Elapsed:          time.Since(a.started),
		EvaluationPoints: a.points,
		TotalPredictions: a.predictions,
		TotalCompletions: a.completions,
		TotalMaintaining: a.maintaining,
		PatternChanges:   a.patternChanges,
		ProfitTracked:    cfg.TrackMaintaining,
	}
	if a.predictions > 0 {
		res.SuccessRate = float64(a.completions) / float64(a.predictions) * 100
		res.MaintainingRate = float64(a.maintaining) / float64(a.predictions) * 100
		lo, hi := clopperPearson(a.completions, a.predictions, 0.95)
		res.SuccessRateLow, res.SuccessRateHigh = lo*100, hi*100
	}
	if len(a.rounds) > 0 {
		res.AvgRoundsToHit = stat.Mean(a.rounds, nil)
	}
	if len(a.profits) > 0 {
		res.AvgProfit = stat.Mean(a.profits, nil)
	}
	if a.points > 0 {
		res.AvgPredictionsPerPoint = float64(a.predictions) / float64(a.points)
	}
	res.BalanceScore = domain.BalanceScore(res.SuccessRate, res.AvgRoundsToHit, reference)
	return res
}

// clopperPearson devuelve el intervalo exacto de una proporción binomial k/n.
func clopperPearson(k, n int, confidence float64) (lo, hi float64) {
	if n == 0 {
		return 0, 0
	}
	alpha := 1 - confidence
	if k > 0 {
		lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	hi = 1
	if k < n {
		hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return lo, hi
}
