package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// BacktestResult es el agregado congelado de una corrida.
type BacktestResult struct {
	RunID       string         `json:"run_id"`
	Config      BacktestConfig `json:"config"`
	PatternSize int            `json:"pattern_size"`
	StartedAt   time.Time      `json:"started_at"`
	Elapsed     time.Duration  `json:"elapsed_ns"`

	EvaluationPoints int `json:"evaluation_points"`
	TotalPredictions int `json:"total_predictions"`
	TotalCompletions int `json:"total_completions"`
	TotalMaintaining int `json:"total_maintaining"`
	PatternChanges   int `json:"pattern_changes"`

	SuccessRate            float64 `json:"success_rate"`
	SuccessRateLow         float64 `json:"success_rate_ci_low"`
	SuccessRateHigh        float64 `json:"success_rate_ci_high"`
	MaintainingRate        float64 `json:"maintaining_rate"`
	AvgRoundsToHit         float64 `json:"avg_rounds_to_hit"`
	AvgProfit              float64 `json:"avg_profit"`
	AvgPredictionsPerPoint float64 `json:"avg_predictions_per_point"`
	BalanceScore           float64 `json:"balance_score"`
	ProfitTracked          bool    `json:"profit_tracked"`
}

// DefaultBalanceReference es la constante de referencia del balance score.
const DefaultBalanceReference = 50.0

// BalanceScore pondera la tasa de éxito por la velocidad de completado:
//
//	success_rate × (reference / avg_rounds_to_hit)
//
// Devuelve 0 si no hubo completados (avg_rounds_to_hit == 0).
func BalanceScore(successRate, avgRoundsToHit, reference float64) float64 {
	if avgRoundsToHit <= 0 {
		return 0
	}
	return successRate * (reference / avgRoundsToHit)
}

// ExpectedHits estima cuántos patrones completan por punto de evaluación.
func (r BacktestResult) ExpectedHits() float64 {
	return r.SuccessRate / 100 * r.AvgPredictionsPerPoint
}

// ResultSet es un lote de resultados listo para persistir.
type ResultSet struct {
	// Name es el prefijo del archivo de salida ("optimization-results-p345-high").
	Name string
	// Groups agrupa los resultados por clave ("pattern_size_5", "grid", ...).
	Groups map[string][]BacktestResult
	// Single marca una corrida única: se serializa como objeto, no como mapa.
	Single bool
}

// SizeKey es la clave de grupo de un tamaño de patrón.
func SizeKey(size int) string {
	return "pattern_size_" + strconv.Itoa(size)
}

// OptimizationName construye el prefijo de salida del optimizador de patrones.
func OptimizationName(sizes []int, difficulty string, tracked bool) string {
	sorted := slices.Clone(sizes)
	slices.Sort(sorted)
	var sb strings.Builder
	for _, s := range sorted {
		sb.WriteString(strconv.Itoa(s))
	}
	if !tracked {
		difficulty = "notrack"
	}
	return "optimization-results-p" + sb.String() + "-" + difficulty
}

// MomentumName construye el prefijo de salida del backtest por momentum.
func MomentumName(grid bool) string {
	if grid {
		return "momentum-results-grid"
	}
	return "momentum-results-single"
}
