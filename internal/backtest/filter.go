package backtest

import (
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/alejandrodnm/kenolab/internal/strategy"
)

// DefaultMinHitRate es el % mínimo de rondas del sample con buildup.
const DefaultMinHitRate = 10.0

// FilterConfig contiene los parámetros del filtro de buildup.
type FilterConfig struct {
	// MinHits y MaxHits delimitan el rango de aciertos parciales que cuenta como buildup.
	MinHits int
	MaxHits int
	// MinHitRate descarta patrones con menos de este % de rondas en buildup.
	MinHitRate float64
	// NotHitIn descarta patrones que completaron hace menos de N rondas. 0 lo desactiva.
	NotHitIn int
}

// FilterConfigFrom extrae los parámetros de filtrado de una config de backtest.
func FilterConfigFrom(cfg domain.BacktestConfig) FilterConfig {
	return FilterConfig{
		MinHits:    cfg.MinHits,
		MaxHits:    cfg.MaxHits,
		MinHitRate: cfg.MinHitRate,
		NotHitIn:   cfg.NotHitIn,
	}
}

// Filter reduce los patrones descubiertos a los que están "construyéndose".
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve los patrones que pasan todos los filtros, en el orden recibido.
// sample es la ventana corta de buildups y tracking la ventana larga de
// exclusión por recencia; ambas terminan antes del punto de evaluación.
func (f *Filter) Apply(patterns []strategy.ScoredPattern, sample, tracking []domain.NumberSet) []strategy.ScoredPattern {
	result := make([]strategy.ScoredPattern, 0, len(patterns))
	for _, p := range patterns {
		if f.passes(p.Pattern, sample, tracking) {
			result = append(result, p)
		}
	}
	return result
}

func (f *Filter) passes(pattern domain.NumberSet, sample, tracking []domain.NumberSet) bool {
	if len(sample) == 0 {
		return false
	}
	buildups := Buildups(pattern, sample, f.cfg.MinHits, f.cfg.MaxHits)
	if len(buildups) == 0 {
		return false
	}
	hitRate := float64(len(buildups)) / float64(len(sample)) * 100
	if hitRate < f.cfg.MinHitRate {
		return false
	}

	if f.cfg.NotHitIn > 0 {
		if last, ok := LastFullHit(pattern, tracking); ok {
			roundsAgo := len(tracking) - 1 - last
			if roundsAgo < f.cfg.NotHitIn {
				return false
			}
		}
	}
	return true
}

// Buildups devuelve, por cada ronda de la ventana cuyo número de aciertos con el
// patrón cae en [minHits, maxHits], ese número de aciertos.
func Buildups(pattern domain.NumberSet, window []domain.NumberSet, minHits, maxHits int) []int {
	var out []int
	for _, drawn := range window {
		hits := domain.HitCount(pattern, drawn)
		if hits >= minHits && hits <= maxHits {
			out = append(out, hits)
		}
	}
	return out
}

// LastFullHit recorre la ventana hacia atrás y devuelve el índice de la última
// ronda donde el patrón completó. false si no completó nunca.
func LastFullHit(pattern domain.NumberSet, window []domain.NumberSet) (int, bool) {
	for i := len(window) - 1; i >= 0; i-- {
		if domain.IsComplete(pattern, window[i]) {
			return i, true
		}
	}
	return -1, false
}
