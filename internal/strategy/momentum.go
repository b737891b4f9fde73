package strategy

// momentum.go: generador de patrones por momentum.
//
// El patrón se mantiene fijo entre refrescos: solo se recalcula cuando todavía
// no hay patrón o cuando round % RefreshFrequency == 0.

import (
	"math/rand/v2"
	"time"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// MomentumConfig parametriza el generador.
type MomentumConfig struct {
	PatternSize      int
	DetectionWindow  int
	BaselineWindow   int
	Threshold        float64
	RefreshFrequency int
	TopNPool         int
}

// MomentumConfigFrom extrae los parámetros del generador de una config de backtest.
func MomentumConfigFrom(cfg domain.BacktestConfig) MomentumConfig {
	return MomentumConfig{
		PatternSize:      cfg.PatternSize,
		DetectionWindow:  cfg.DetectionWindow,
		BaselineWindow:   cfg.BaselineWindow,
		Threshold:        cfg.MomentumThreshold,
		RefreshFrequency: cfg.RefreshFrequency,
		TopNPool:         cfg.TopNPool,
	}
}

// MomentumOption configura un MomentumGenerator.
type MomentumOption func(*MomentumGenerator)

// WithRand inyecta la fuente aleatoria usada cuando no hay historia.
func WithRand(r *rand.Rand) MomentumOption {
	return func(g *MomentumGenerator) { g.rng = r }
}

// MomentumGenerator selecciona un patrón de tamaño fijo a partir de los números hot.
// No es seguro para uso concurrente: cada corrida usa su propia instancia.
type MomentumGenerator struct {
	cfg         MomentumConfig
	rng         *rand.Rand
	current     domain.NumberSet
	lastRefresh int
}

// NewMomentumGenerator crea un generador sin patrón cacheado.
func NewMomentumGenerator(cfg MomentumConfig, opts ...MomentumOption) *MomentumGenerator {
	g := &MomentumGenerator{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return g
}

// Name implementa Source.
func (g *MomentumGenerator) Name() string { return string(domain.StrategyMomentum) }

// Patterns implementa Source devolviendo el único patrón vigente.
func (g *MomentumGenerator) Patterns(prefix []domain.Round, round int) ([]ScoredPattern, error) {
	return []ScoredPattern{{Pattern: g.Pattern(prefix, round)}}, nil
}

// LastRefresh devuelve la ronda del último refresco (0 si nunca se refrescó).
func (g *MomentumGenerator) LastRefresh() int { return g.lastRefresh }

// Pattern devuelve el patrón para la ronda dada.
func (g *MomentumGenerator) Pattern(prefix []domain.Round, round int) domain.NumberSet {
	refresh := g.current == 0 || (g.cfg.RefreshFrequency > 0 && round%g.cfg.RefreshFrequency == 0)
	if !refresh {
		return g.current
	}

	// Historia insuficiente: patrón degradado, sin cachear.
	if len(prefix) < g.cfg.BaselineWindow {
		return g.fallback(prefix)
	}

	g.current = g.generate(prefix)
	g.lastRefresh = round
	return g.current
}

func (g *MomentumGenerator) generate(prefix []domain.Round) domain.NumberSet {
	hot := domain.HotNumbers(prefix, g.cfg.DetectionWindow, g.cfg.BaselineWindow, g.cfg.Threshold)
	if len(hot) > g.cfg.TopNPool {
		hot = hot[:g.cfg.TopNPool]
	}

	var pattern domain.NumberSet
	for _, s := range hot {
		if pattern.Len() == g.cfg.PatternSize {
			break
		}
		pattern = pattern.Add(s.Number)
	}

	if missing := g.cfg.PatternSize - pattern.Len(); missing > 0 {
		baseline := domain.Tail(prefix, g.cfg.BaselineWindow)
		pattern = pattern.Union(domain.NewNumberSet(domain.MostFrequent(baseline, missing, pattern)...))
	}
	return pattern
}

func (g *MomentumGenerator) fallback(prefix []domain.Round) domain.NumberSet {
	if len(prefix) == 0 {
		return g.random()
	}
	return domain.NewNumberSet(domain.MostFrequent(prefix, g.cfg.PatternSize, 0)...)
}

func (g *MomentumGenerator) random() domain.NumberSet {
	nums := make([]int, 0, domain.MaxNumber)
	for n := domain.MinNumber; n <= domain.MaxNumber; n++ {
		nums = append(nums, n)
	}
	g.rng.Shuffle(len(nums), func(i, j int) { nums[i], nums[j] = nums[j], nums[i] })
	size := min(g.cfg.PatternSize, len(nums))
	return domain.NewNumberSet(nums[:size]...)
}
