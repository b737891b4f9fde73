package backtest

// grid.go: búsqueda en grilla sobre los parámetros del harness.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// DefaultSampleSizes son los tamaños de sample probados por el optimizador de patrones.
var DefaultSampleSizes = []int{5, 10, 25, 50, 75, 100, 150, 200}

// DefaultNotHitIn son los umbrales de exclusión por recencia probados.
var DefaultNotHitIn = []int{0, 50, 100, 1000}

// defaultHitRanges son los rangos min/max de aciertos parciales por tamaño de patrón.
var defaultHitRanges = map[int][2][]int{
	3:  {{1, 2}, {2, 3}},
	4:  {{1, 3}, {3, 5}},
	5:  {{1, 4}, {3, 4}},
	6:  {{3, 4, 5}, {4, 5}},
	7:  {{4, 5, 6}, {5, 6}},
	8:  {{5, 6, 7}, {6, 7}},
	9:  {{6, 7, 8}, {7, 8}},
	10: {{7, 8, 9}, {8, 9}},
}

// DefaultHitRanges devuelve los valores de min_hits y max_hits a probar para un tamaño.
func DefaultHitRanges(size int) (minHits, maxHits []int) {
	if r, ok := defaultHitRanges[size]; ok {
		return slices.Clone(r[0]), slices.Clone(r[1])
	}
	return []int{max(1, size-2), size - 1}, []int{size - 1}
}

// PatternGrid es el producto cartesiano de parámetros del filtro de buildup.
type PatternGrid struct {
	SampleSizes []int
	MinHits     []int
	MaxHits     []int
	NotHitIn    []int
}

// DefaultPatternGrid devuelve la grilla estándar para un tamaño de patrón.
func DefaultPatternGrid(size int) PatternGrid {
	minHits, maxHits := DefaultHitRanges(size)
	return PatternGrid{
		SampleSizes: slices.Clone(DefaultSampleSizes),
		MinHits:     minHits,
		MaxHits:     maxHits,
		NotHitIn:    slices.Clone(DefaultNotHitIn),
	}
}

// Configs expande la grilla sobre base. Se omiten las combinaciones con min > max.
func (g PatternGrid) Configs(base domain.BacktestConfig) []domain.BacktestConfig {
	var out []domain.BacktestConfig
	for _, sample := range g.SampleSizes {
		for _, minHits := range g.MinHits {
			for _, maxHits := range g.MaxHits {
				if minHits > maxHits {
					continue
				}
				for _, notHitIn := range g.NotHitIn {
					cfg := base
					cfg.Strategy = domain.StrategyPattern
					cfg.SampleSize = sample
					cfg.MinHits = minHits
					cfg.MaxHits = maxHits
					cfg.NotHitIn = notHitIn
					out = append(out, cfg)
				}
			}
		}
	}
	return out
}

// MomentumGrid es el producto cartesiano de parámetros del generador por momentum.
type MomentumGrid struct {
	DetectionWindows   []int
	BaselineWindows    []int
	Thresholds         []float64
	RefreshFrequencies []int
}

// DefaultMomentumGrid devuelve la grilla estándar del generador.
func DefaultMomentumGrid() MomentumGrid {
	return MomentumGrid{
		DetectionWindows:   []int{3, 5, 7, 10},
		BaselineWindows:    []int{25, 50, 75, 100},
		Thresholds:         []float64{1.2, 1.5, 2.0, 2.5},
		RefreshFrequencies: []int{5, 10, 20},
	}
}

// Configs expande la grilla sobre base.
func (g MomentumGrid) Configs(base domain.BacktestConfig) []domain.BacktestConfig {
	var out []domain.BacktestConfig
	for _, detection := range g.DetectionWindows {
		for _, baseline := range g.BaselineWindows {
			for _, threshold := range g.Thresholds {
				for _, refresh := range g.RefreshFrequencies {
					cfg := base
					cfg.Strategy = domain.StrategyMomentum
					cfg.DetectionWindow = detection
					cfg.BaselineWindow = baseline
					cfg.MomentumThreshold = threshold
					cfg.RefreshFrequency = refresh
					out = append(out, cfg)
				}
			}
		}
	}
	return out
}

// GridOptions controla la ejecución de un grid.
type GridOptions struct {
	// Workers es el número de corridas simultáneas. <= 1 es secuencial.
	Workers int
	// Label identifica el grid en los logs de progreso.
	Label string
	// ProgressOutput recibe la barra de progreso; nil la oculta.
	ProgressOutput io.Writer
}

// RunGrid ejecuta todas las configuraciones y devuelve los resultados
// ordenados por success rate descendente.
//
// Si ctx se cancela devuelve los resultados ya completados junto con el error
// del contexto, para que el llamador pueda persistirlos.
func (r *Runner) RunGrid(ctx context.Context, configs []domain.BacktestConfig, opts GridOptions) ([]domain.BacktestResult, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("backtest.RunGrid: %w: empty grid", domain.ErrInvalidConfig)
	}

	label := opts.Label
	if label == "" {
		label = "grid"
	}
	slog.Info("grid search started",
		"task", label,
		"configs", len(configs),
		"workers", max(1, opts.Workers),
		"rounds", r.Len(),
	)

	progress := NewProgress(label, len(configs), opts.ProgressOutput)
	results, completed, err := runConcurrent(ctx, r, configs, opts.Workers, progress)
	elapsed := progress.Finish()

	out := make([]domain.BacktestResult, 0, len(results))
	for i, res := range results {
		if completed[i] {
			out = append(out, res)
		}
	}
	RankBySuccess(out)

	slog.Info("grid search finished",
		"task", label,
		"completed", len(out),
		"configs", len(configs),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	if err != nil {
		return out, fmt.Errorf("backtest.RunGrid: %w", err)
	}
	return out, nil
}

// RankBySuccess ordena por success rate descendente. Los empates conservan
// el orden de la grilla.
func RankBySuccess(results []domain.BacktestResult) {
	slices.SortStableFunc(results, func(a, b domain.BacktestResult) int {
		switch {
		case a.SuccessRate > b.SuccessRate:
			return -1
		case a.SuccessRate < b.SuccessRate:
			return 1
		}
		return 0
	})
}

// RankByBalance ordena por balance score descendente.
func RankByBalance(results []domain.BacktestResult) {
	slices.SortStableFunc(results, func(a, b domain.BacktestResult) int {
		switch {
		case a.BalanceScore > b.BalanceScore:
			return -1
		case a.BalanceScore < b.BalanceScore:
			return 1
		}
		return 0
	})
}
