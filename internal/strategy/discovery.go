package strategy

// discovery.go: descubrimiento combinatorio de patrones.
//
// Para cada ronda de la ventana se enumeran las C(D,K) combinaciones de sus
// números sorteados y se acumula un peso por combinación. Con recencia, una
// ronda de edad a (0 = la última de la ventana) pesa decay^a.

import (
	"fmt"
	"math"
	"slices"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// DiscoveryOptions parametriza Discover.
type DiscoveryOptions struct {
	PatternSize int
	TopN        int
	UseRecency  bool
	DecayFactor float64
}

// DiscoveryOptionsFrom extrae las opciones de descubrimiento de una config de backtest.
func DiscoveryOptionsFrom(cfg domain.BacktestConfig) DiscoveryOptions {
	return DiscoveryOptions{
		PatternSize: cfg.PatternSize,
		TopN:        cfg.DiscoveryTopN,
		UseRecency:  cfg.UseRecency,
		DecayFactor: cfg.DecayFactor,
	}
}

// Validate acota el coste de la enumeración para una ventana de windowLen rondas.
func (o DiscoveryOptions) Validate(windowLen int) error {
	if o.PatternSize < 1 || o.PatternSize > domain.MaxPatternSize {
		return fmt.Errorf("strategy.Discover: %w: pattern size %d must be in [1,%d]",
			domain.ErrInvalidConfig, o.PatternSize, domain.MaxPatternSize)
	}
	if windowLen > domain.MaxDiscoveryWindow {
		return fmt.Errorf("strategy.Discover: %w: window of %d rounds exceeds %d",
			domain.ErrInvalidConfig, windowLen, domain.MaxDiscoveryWindow)
	}
	if o.TopN <= 0 || o.TopN > domain.MaxDiscoveryTopN {
		return fmt.Errorf("strategy.Discover: %w: top_n %d must be in [1,%d]",
			domain.ErrInvalidConfig, o.TopN, domain.MaxDiscoveryTopN)
	}
	if o.UseRecency && (o.DecayFactor <= 0 || o.DecayFactor >= 1) {
		return fmt.Errorf("strategy.Discover: %w: decay factor %.3f must be in (0,1)",
			domain.ErrInvalidConfig, o.DecayFactor)
	}
	return nil
}

// Discover devuelve los TopN patrones más frecuentes de la ventana, por
// puntuación descendente. Los empates conservan el orden de primera aparición.
func Discover(window []domain.Round, opts DiscoveryOptions) ([]ScoredPattern, error) {
	if err := opts.Validate(len(window)); err != nil {
		return nil, err
	}

	index := make(map[domain.NumberSet]int)
	var scored []ScoredPattern

	last := len(window) - 1
	for i, r := range window {
		weight := 1.0
		if opts.UseRecency {
			weight = math.Pow(opts.DecayFactor, float64(last-i))
		}
		domain.ForEachCombination(r.Drawn.Numbers(), opts.PatternSize, func(p domain.NumberSet) {
			if j, ok := index[p]; ok {
				scored[j].Score += weight
				return
			}
			index[p] = len(scored)
			scored = append(scored, ScoredPattern{Pattern: p, Score: weight})
		})
	}

	slices.SortStableFunc(scored, func(a, b ScoredPattern) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(scored) > opts.TopN {
		scored = scored[:opts.TopN]
	}
	return scored, nil
}

// DiscoverySource es la Source basada en descubrimiento: en cada punto toma
// las últimas `window` rondas del prefijo y devuelve sus patrones frecuentes.
type DiscoverySource struct {
	window int
	opts   DiscoveryOptions
}

// NewDiscoverySource valida las opciones y crea la Source.
func NewDiscoverySource(window int, opts DiscoveryOptions) (*DiscoverySource, error) {
	if window <= 0 {
		return nil, fmt.Errorf("strategy.NewDiscoverySource: %w: window must be > 0", domain.ErrInvalidConfig)
	}
	if err := opts.Validate(window); err != nil {
		return nil, err
	}
	return &DiscoverySource{window: window, opts: opts}, nil
}

// Name implementa Source.
func (s *DiscoverySource) Name() string { return string(domain.StrategyPattern) }

// Patterns implementa Source.
func (s *DiscoverySource) Patterns(prefix []domain.Round, _ int) ([]ScoredPattern, error) {
	return Discover(domain.Tail(prefix, s.window), s.opts)
}
