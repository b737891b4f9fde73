package analysis

// results.go: lectura de los resultados del optimizador.
//
// A partir de los resultados de la grilla por tamaño de patrón, selecciona
// las configuraciones destacadas (mejor, más rápida, más balanceada,
// más rentable, más selectiva) y compara tamaños entre sí.

import (
	"cmp"
	"maps"
	"slices"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

// Umbrales de las categorías destacadas, en % de éxito.
const (
	FastestMinSuccess   = 5.0
	SelectiveMinSuccess = 10.0
	CleanestMinSuccess  = 5.0
)

// SampleImpact es el éxito medio de todas las corridas con un mismo sample_size.
type SampleImpact struct {
	SampleSize int     `json:"sample_size"`
	AvgSuccess float64 `json:"avg_success"`
	Tests      int     `json:"tests"`
}

// SizeAnalysis resume los resultados de un tamaño de patrón.
// Cada puntero es nil cuando ninguna corrida califica para la categoría.
type SizeAnalysis struct {
	Key          string                 `json:"key"`
	PatternSize  int                    `json:"pattern_size"`
	Runs         int                    `json:"runs"`
	Best         *domain.BacktestResult `json:"best,omitempty"`
	Fastest      *domain.BacktestResult `json:"fastest,omitempty"`
	Balanced     *domain.BacktestResult `json:"balanced,omitempty"`
	Profitable   *domain.BacktestResult `json:"profitable,omitempty"`
	Selective    *domain.BacktestResult `json:"selective,omitempty"`
	SampleImpact []SampleImpact         `json:"sample_impact"`
}

// SizeComparison es la mejor corrida de un tamaño, para comparar tamaños.
type SizeComparison struct {
	PatternSize  int                  `json:"pattern_size"`
	SuccessRate  float64              `json:"success_rate"`
	AvgRounds    float64              `json:"avg_rounds"`
	AvgPatterns  float64              `json:"avg_patterns"`
	ExpectedHits float64              `json:"expected_hits"`
	Config       domain.BacktestConfig `json:"config"`
}

// Recommendations son las configuraciones sugeridas entre todos los tamaños.
type Recommendations struct {
	HighestSuccess *domain.BacktestResult `json:"highest_success,omitempty"`
	BestBalance    *domain.BacktestResult `json:"best_balance,omitempty"`
	CleanestSignal *domain.BacktestResult `json:"cleanest_signal,omitempty"`
}

// Report es el análisis completo de un archivo de resultados.
type Report struct {
	Sizes           []SizeAnalysis   `json:"sizes"`
	Comparison      []SizeComparison `json:"comparison"`
	Recommendations Recommendations  `json:"recommendations"`
}

// AnalyzeResults analiza resultados agrupados por clave ("pattern_size_5", ...).
// Las claves se procesan en orden alfabético.
func AnalyzeResults(byKey map[string][]domain.BacktestResult) Report {
	var report Report
	var all []domain.BacktestResult

	for _, key := range slices.Sorted(maps.Keys(byKey)) {
		results := byKey[key]
		sa := AnalyzeSize(key, results)
		report.Sizes = append(report.Sizes, sa)
		all = append(all, results...)

		if sa.Best != nil {
			report.Comparison = append(report.Comparison, SizeComparison{
				PatternSize:  sa.Best.PatternSize,
				SuccessRate:  sa.Best.SuccessRate,
				AvgRounds:    sa.Best.AvgRoundsToHit,
				AvgPatterns:  sa.Best.AvgPredictionsPerPoint,
				ExpectedHits: sa.Best.ExpectedHits(),
				Config:       sa.Best.Config,
			})
		}
	}

	slices.SortStableFunc(report.Comparison, func(a, b SizeComparison) int {
		return cmp.Compare(b.SuccessRate, a.SuccessRate)
	})

	report.Recommendations = Recommendations{
		HighestSuccess: pick(all, nil, bySuccessDesc),
		BestBalance:    pick(all, positiveBalance, byBalanceDesc),
		CleanestSignal: pick(all, minSuccess(CleanestMinSuccess), byPredictionsAsc),
	}
	return report
}

// AnalyzeSize selecciona las corridas destacadas de un tamaño.
func AnalyzeSize(key string, results []domain.BacktestResult) SizeAnalysis {
	sa := SizeAnalysis{Key: key, Runs: len(results)}
	if len(results) == 0 {
		return sa
	}
	sa.PatternSize = results[0].PatternSize

	sa.Best = pick(results, nil, bySuccessDesc)
	sa.Fastest = pick(results, func(r domain.BacktestResult) bool {
		return r.SuccessRate >= FastestMinSuccess && r.AvgRoundsToHit > 0
	}, func(a, b domain.BacktestResult) int {
		return cmp.Compare(a.AvgRoundsToHit, b.AvgRoundsToHit)
	})
	sa.Balanced = pick(results, positiveBalance, byBalanceDesc)
	sa.Profitable = pick(results, func(r domain.BacktestResult) bool {
		return r.ProfitTracked && r.AvgProfit > 0
	}, func(a, b domain.BacktestResult) int {
		return cmp.Compare(b.AvgProfit, a.AvgProfit)
	})
	sa.Selective = pick(results, minSuccess(SelectiveMinSuccess), byPredictionsAsc)
	sa.SampleImpact = sampleImpact(results)
	return sa
}

func sampleImpact(results []domain.BacktestResult) []SampleImpact {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range results {
		sums[r.Config.SampleSize] += r.SuccessRate
		counts[r.Config.SampleSize]++
	}
	out := make([]SampleImpact, 0, len(counts))
	for _, size := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, SampleImpact{
			SampleSize: size,
			AvgSuccess: sums[size] / float64(counts[size]),
			Tests:      counts[size],
		})
	}
	return out
}

// pick devuelve una copia del primer resultado según order entre los que
// cumplen keep (nil = todos). Los empates conservan el orden de entrada.
func pick(results []domain.BacktestResult, keep func(domain.BacktestResult) bool, order func(a, b domain.BacktestResult) int) *domain.BacktestResult {
	var best *domain.BacktestResult
	for i := range results {
		r := results[i]
		if keep != nil && !keep(r) {
			continue
		}
		if best == nil || order(r, *best) < 0 {
			best = &r
		}
	}
	return best
}

func bySuccessDesc(a, b domain.BacktestResult) int { return cmp.Compare(b.SuccessRate, a.SuccessRate) }

func byPredictionsAsc(a, b domain.BacktestResult) int {
	return cmp.Compare(a.AvgPredictionsPerPoint, b.AvgPredictionsPerPoint)
}

// byBalanceDesc recalcula el balance sobre la referencia estándar, así los
// archivos antiguos sin balance_score también se ordenan bien.
func byBalanceDesc(a, b domain.BacktestResult) int {
	return cmp.Compare(balanceOf(b), balanceOf(a))
}

func positiveBalance(r domain.BacktestResult) bool { return balanceOf(r) > 0 }

func balanceOf(r domain.BacktestResult) float64 {
	if r.BalanceScore > 0 {
		return r.BalanceScore
	}
	return domain.BalanceScore(r.SuccessRate, r.AvgRoundsToHit, domain.DefaultBalanceReference)
}

func minSuccess(threshold float64) func(domain.BacktestResult) bool {
	return func(r domain.BacktestResult) bool { return r.SuccessRate >= threshold }
}
