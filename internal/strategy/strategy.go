package strategy

import (
	"fmt"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// ScoredPattern es un patrón candidato con su puntuación acumulada.
type ScoredPattern struct {
	Pattern domain.NumberSet `json:"pattern"`
	Score   float64          `json:"score"`
}

// Source define el contrato de las estrategias que producen patrones en un
// punto de evaluación. Ambas variantes (descubrimiento y momentum) lo cumplen.
type Source interface {
	// Name devuelve el identificador de la estrategia.
	Name() string

	// Patterns devuelve los patrones candidatos para la ronda `round`.
	// prefix contiene solo rondas anteriores a `round`; la implementación
	// nunca debe mirar más allá.
	Patterns(prefix []domain.Round, round int) ([]ScoredPattern, error)
}

// New construye la Source que corresponde a la config.
// Cada llamada devuelve una instancia nueva sin estado compartido.
func New(cfg domain.BacktestConfig, opts ...MomentumOption) (Source, error) {
	switch cfg.Strategy {
	case domain.StrategyMomentum:
		return NewMomentumGenerator(MomentumConfigFrom(cfg), opts...), nil
	case domain.StrategyPattern:
		src, err := NewDiscoverySource(cfg.DiscoveryWindow, DiscoveryOptionsFrom(cfg))
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("strategy.New: %w: unknown strategy %q", domain.ErrInvalidConfig, cfg.Strategy)
}
