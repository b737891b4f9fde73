package backtest

import (
	"github.com/alejandrodnm/kenolab/internal/domain"
)

// Outcome es el resultado de evaluar un patrón contra la ventana futura.
type Outcome struct {
	Completed   bool
	RoundsToHit int // distancia 1-based al completado; 0 si no completó
	Profit      float64
	// Tracked es true cuando se evaluó con tabla de pagos y Profit es significativo.
	Tracked bool
}

// Maintaining devuelve true si la predicción no perdió dinero.
func (o Outcome) Maintaining() bool {
	return o.Tracked && o.Profit >= 0
}

// Evaluate busca el primer completado del patrón en forward.
//
// Cada ronda transcurrida cuesta 1 unidad: un completado en la ronda r rinde
// payout[K][K] − r. Sin completado y con tabla de pagos, se toma el mejor
// acierto parcial con pago > 0 (la búsqueda corta en el primer profit >= 0);
// si no hay ninguno el profit es −len(forward). payouts nil desactiva el profit.
func Evaluate(pattern domain.NumberSet, forward []domain.NumberSet, payouts domain.PayoutTable, difficulty string) Outcome {
	size := pattern.Len()
	tracked := payouts != nil

	for i, drawn := range forward {
		if !domain.IsComplete(pattern, drawn) {
			continue
		}
		out := Outcome{Completed: true, RoundsToHit: i + 1, Tracked: tracked}
		if tracked {
			out.Profit = payouts.Multiplier(difficulty, size, size) - float64(i+1)
		}
		return out
	}

	if !tracked {
		return Outcome{}
	}

	best := -float64(len(forward))
	for i, drawn := range forward {
		hits := domain.HitCount(pattern, drawn)
		if hits == 0 {
			continue
		}
		multiplier := payouts.Multiplier(difficulty, size, hits)
		if multiplier <= 0 {
			continue
		}
		profit := multiplier - float64(i+1)
		best = max(best, profit)
		if profit >= 0 {
			break
		}
	}
	return Outcome{Profit: best, Tracked: true}
}

// EvaluateAt evalúa el patrón contra drawn[idx:idx+lookahead].
// Devuelve false si no hay suficientes rondas futuras.
func EvaluateAt(pattern domain.NumberSet, drawn []domain.NumberSet, idx, lookahead int, payouts domain.PayoutTable, difficulty string) (Outcome, bool) {
	if idx < 0 || lookahead <= 0 || idx+lookahead > len(drawn) {
		return Outcome{}, false
	}
	return Evaluate(pattern, drawn[idx:idx+lookahead], payouts, difficulty), true
}
