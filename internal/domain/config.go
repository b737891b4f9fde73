package domain

import "fmt"

// StrategyKind identifica cómo se obtienen los patrones en cada punto de evaluación.
type StrategyKind string

const (
	// StrategyPattern descubre combinaciones frecuentes y las filtra por buildup.
	StrategyPattern StrategyKind = "pattern"
	// StrategyMomentum genera un único patrón a partir de los números "hot".
	StrategyMomentum StrategyKind = "momentum"
)

// Límites de coste del descubrimiento combinatorio.
const (
	MaxDiscoveryWindow = 2000
	MaxDiscoveryTopN   = 10_000
)

// BacktestConfig es el conjunto inmutable de parámetros de una corrida.
// Una config produce exactamente un BacktestResult.
type BacktestConfig struct {
	Strategy    StrategyKind `json:"strategy" yaml:"strategy"`
	PatternSize int          `json:"pattern_size" yaml:"pattern_size"`
	DrawCount   int          `json:"draw_count" yaml:"draw_count"`

	// --- Momentum ---
	DetectionWindow   int     `json:"detection_window" yaml:"detection_window"`
	BaselineWindow    int     `json:"baseline_window" yaml:"baseline_window"`
	MomentumThreshold float64 `json:"momentum_threshold" yaml:"momentum_threshold"`
	RefreshFrequency  int     `json:"refresh_frequency" yaml:"refresh_frequency"`
	TopNPool          int     `json:"top_n_pool" yaml:"top_n_pool"`

	// --- Descubrimiento + buildup ---
	SampleSize      int     `json:"sample_size" yaml:"sample_size"`
	MinHits         int     `json:"min_hits" yaml:"min_hits"`
	MaxHits         int     `json:"max_hits" yaml:"max_hits"`
	NotHitIn        int     `json:"not_hit_in" yaml:"not_hit_in"`
	MinHitRate      float64 `json:"min_hit_rate" yaml:"min_hit_rate"` // % de rondas del sample con buildup
	DiscoveryWindow int     `json:"discovery_window" yaml:"discovery_window"`
	DiscoveryTopN   int     `json:"discovery_top_n" yaml:"discovery_top_n"`
	TrackingWindow  int     `json:"tracking_window" yaml:"tracking_window"`
	UseRecency      bool    `json:"use_recency" yaml:"use_recency"`
	DecayFactor     float64 `json:"decay_factor" yaml:"decay_factor"`

	// --- Harness ---
	Lookahead   int `json:"lookahead" yaml:"lookahead"`
	Stride      int `json:"stride" yaml:"stride"` // momentum: 0 = RefreshFrequency
	StartBuffer int `json:"start_buffer" yaml:"start_buffer"`

	// --- Rentabilidad ---
	TrackMaintaining bool   `json:"track_maintaining" yaml:"track_maintaining"`
	Difficulty       string `json:"difficulty" yaml:"difficulty"`
}

// DefaultPatternConfig devuelve los parámetros del optimizador de patrones.
func DefaultPatternConfig(size int) BacktestConfig {
	minHits, maxHits := size-2, size-1
	if minHits < 1 {
		minHits = 1
	}
	return BacktestConfig{
		Strategy:        StrategyPattern,
		PatternSize:     size,
		DrawCount:       DefaultDrawCount,
		SampleSize:      50,
		MinHits:         minHits,
		MaxHits:         maxHits,
		NotHitIn:        0,
		MinHitRate:      10,
		DiscoveryWindow: 500,
		DiscoveryTopN:   100,
		TrackingWindow:  1000,
		DecayFactor:     0.98,
		Lookahead:       30,
		Stride:          50,
		StartBuffer:     200,
		Difficulty:      DifficultyHigh,
	}
}

// DefaultMomentumConfig devuelve los parámetros del generador por momentum.
func DefaultMomentumConfig() BacktestConfig {
	return BacktestConfig{
		Strategy:          StrategyMomentum,
		PatternSize:       10,
		DrawCount:         DefaultDrawCount,
		DetectionWindow:   5,
		BaselineWindow:    50,
		MomentumThreshold: 1.5,
		RefreshFrequency:  5,
		TopNPool:          15,
		Lookahead:         30,
		StartBuffer:       100,
		Difficulty:        DifficultyHigh,
	}
}

// StartIndex es el primer índice de evaluación: deja historia suficiente
// para todas las ventanas hacia atrás. En momentum se alinea al siguiente
// múltiplo de RefreshFrequency para que los refrescos caigan en puntos
// evaluados.
func (c BacktestConfig) StartIndex() int {
	if c.Strategy == StrategyMomentum {
		start := c.BaselineWindow + c.StartBuffer
		if f := c.RefreshFrequency; f > 0 && start%f != 0 {
			start += f - start%f
		}
		return start
	}
	return max(c.DiscoveryWindow, c.SampleSize) + c.StartBuffer
}

// Step es la distancia entre puntos de evaluación consecutivos.
func (c BacktestConfig) Step() int {
	if c.Strategy == StrategyMomentum && c.Stride <= 0 {
		return c.RefreshFrequency
	}
	return c.Stride
}

// Validate verifica que todos los parámetros estén en rango.
func (c BacktestConfig) Validate() error {
	if c.PatternSize < 1 || c.PatternSize > MaxPatternSize {
		return fmt.Errorf("%w: pattern_size %d must be in [1,%d]", ErrInvalidConfig, c.PatternSize, MaxPatternSize)
	}
	// K == draw_count es válido: el patrón completa solo si coincide con el sorteo.
	if c.DrawCount > 0 && c.PatternSize > c.DrawCount {
		return fmt.Errorf("%w: pattern_size %d must be <= draw_count %d", ErrInvalidConfig, c.PatternSize, c.DrawCount)
	}
	if c.Lookahead <= 0 {
		return fmt.Errorf("%w: lookahead must be > 0", ErrInvalidConfig)
	}
	if c.TrackMaintaining && !ValidDifficulty(c.Difficulty) {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}

	switch c.Strategy {
	case StrategyMomentum:
		return c.validateMomentum()
	case StrategyPattern:
		return c.validatePattern()
	}
	return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
}

func (c BacktestConfig) validateMomentum() error {
	if c.DetectionWindow <= 0 || c.BaselineWindow <= 0 {
		return fmt.Errorf("%w: detection and baseline windows must be > 0", ErrInvalidConfig)
	}
	if c.RefreshFrequency <= 0 {
		return fmt.Errorf("%w: refresh_frequency must be > 0", ErrInvalidConfig)
	}
	if c.TopNPool <= 0 {
		return fmt.Errorf("%w: top_n_pool must be > 0", ErrInvalidConfig)
	}
	if c.Stride < 0 {
		return fmt.Errorf("%w: stride must be >= 0", ErrInvalidConfig)
	}
	return nil
}

func (c BacktestConfig) validatePattern() error {
	if c.SampleSize <= 0 {
		return fmt.Errorf("%w: sample_size must be > 0", ErrInvalidConfig)
	}
	if c.MinHits < 0 || c.MinHits > c.MaxHits {
		return fmt.Errorf("%w: hit range %d-%d", ErrInvalidConfig, c.MinHits, c.MaxHits)
	}
	if c.Stride <= 0 {
		return fmt.Errorf("%w: stride must be > 0", ErrInvalidConfig)
	}
	if c.TrackingWindow <= 0 {
		return fmt.Errorf("%w: tracking_window must be > 0", ErrInvalidConfig)
	}
	if c.DiscoveryWindow <= 0 || c.DiscoveryWindow > MaxDiscoveryWindow {
		return fmt.Errorf("%w: discovery_window %d must be in [1,%d]", ErrInvalidConfig, c.DiscoveryWindow, MaxDiscoveryWindow)
	}
	if c.DiscoveryTopN <= 0 || c.DiscoveryTopN > MaxDiscoveryTopN {
		return fmt.Errorf("%w: discovery_top_n %d must be in [1,%d]", ErrInvalidConfig, c.DiscoveryTopN, MaxDiscoveryTopN)
	}
	if c.UseRecency && (c.DecayFactor <= 0 || c.DecayFactor >= 1) {
		return fmt.Errorf("%w: decay_factor %.3f must be in (0,1)", ErrInvalidConfig, c.DecayFactor)
	}
	return nil
}
