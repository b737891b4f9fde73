package domain

import (
	"encoding/json"
	"slices"
)

// MomentumSentinel es el valor numérico que se reporta para un momentum no acotado
// (el número no apareció en el baseline pero sí en la ventana reciente).
// Se conserva para que los resultados serializados sean comparables con los históricos.
const MomentumSentinel = 999.0

// Momentum es el ratio recent_freq / baseline_freq de un número.
//
// Unbounded marca el caso baseline_freq == 0 con apariciones recientes: es mayor
// que cualquier momentum finito y supera cualquier umbral finito, sin depender
// de que el sentinel numérico sea "suficientemente grande".
type Momentum struct {
	Ratio     float64
	Unbounded bool
}

// AtLeast devuelve true si el momentum alcanza el umbral dado.
func (m Momentum) AtLeast(threshold float64) bool {
	return m.Unbounded || m.Ratio >= threshold
}

// Compare ordena momentums: negativo si m < o, 0 si iguales, positivo si m > o.
func (m Momentum) Compare(o Momentum) int {
	switch {
	case m.Unbounded && o.Unbounded:
		return 0
	case m.Unbounded:
		return 1
	case o.Unbounded:
		return -1
	case m.Ratio < o.Ratio:
		return -1
	case m.Ratio > o.Ratio:
		return 1
	}
	return 0
}

// Value devuelve el ratio numérico, usando MomentumSentinel para el caso no acotado.
func (m Momentum) Value() float64 {
	if m.Unbounded {
		return MomentumSentinel
	}
	return m.Ratio
}

// MarshalJSON serializa el momentum como número (sentinel si no está acotado).
func (m Momentum) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value())
}

// NumberStat son las estadísticas de un número en un punto de evaluación.
// Se recalculan desde cero en cada punto; nunca se cachean entre rondas.
type NumberStat struct {
	Number        int      `json:"number"`
	RecentCount   int      `json:"recent_count"`
	BaselineCount int      `json:"baseline_count"`
	Momentum      Momentum `json:"momentum"`
	Hot           bool     `json:"is_hot"`
}

// ComputeMomentum calcula el momentum de un número sobre el prefijo de historia dado.
//
//	recent_freq   = apariciones en las últimas `detection` rondas / detection
//	baseline_freq = apariciones en las últimas `baseline` rondas / baseline
//
// Devuelve false si el prefijo es más corto que el baseline (dato insuficiente,
// no es un error). Si baseline_freq == 0 devuelve un momentum no acotado cuando
// el número apareció en la ventana reciente, o 0 si no apareció.
func ComputeMomentum(number int, prefix []Round, detection, baseline int) (Momentum, bool) {
	stat, ok := computeStat(number, prefix, detection, baseline)
	if !ok {
		return Momentum{}, false
	}
	return stat.Momentum, true
}

// NumberStats calcula las estadísticas de los 40 números, en orden de número.
// Devuelve false si el prefijo es más corto que el baseline.
func NumberStats(prefix []Round, detection, baseline int, threshold float64) ([]NumberStat, bool) {
	if !momentumComputable(prefix, detection, baseline) {
		return nil, false
	}
	out := make([]NumberStat, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		stat, _ := computeStat(n, prefix, detection, baseline)
		stat.Hot = stat.Momentum.AtLeast(threshold)
		out = append(out, stat)
	}
	return out, true
}

// HotNumbers devuelve los números con momentum >= threshold, ordenados por
// momentum descendente (empates por número ascendente).
func HotNumbers(prefix []Round, detection, baseline int, threshold float64) []NumberStat {
	stats, ok := NumberStats(prefix, detection, baseline, threshold)
	if !ok {
		return nil
	}
	hot := make([]NumberStat, 0, len(stats))
	for _, s := range stats {
		if s.Hot {
			hot = append(hot, s)
		}
	}
	slices.SortStableFunc(hot, func(a, b NumberStat) int {
		return b.Momentum.Compare(a.Momentum)
	})
	return hot
}

func momentumComputable(prefix []Round, detection, baseline int) bool {
	return detection > 0 && baseline > 0 && len(prefix) >= baseline
}

func computeStat(number int, prefix []Round, detection, baseline int) (NumberStat, bool) {
	if !momentumComputable(prefix, detection, baseline) {
		return NumberStat{}, false
	}

	recent := countAppearances(number, Tail(prefix, detection))
	base := countAppearances(number, Tail(prefix, baseline))

	stat := NumberStat{Number: number, RecentCount: recent, BaselineCount: base}
	if base == 0 {
		stat.Momentum = Momentum{Unbounded: recent > 0}
		return stat, true
	}

	recentFreq := float64(recent) / float64(detection)
	baselineFreq := float64(base) / float64(baseline)
	stat.Momentum = Momentum{Ratio: recentFreq / baselineFreq}
	return stat, true
}

func countAppearances(number int, rounds []Round) int {
	n := 0
	for _, r := range rounds {
		if r.Drawn.Has(number) {
			n++
		}
	}
	return n
}

// Frequencies cuenta apariciones por número. El índice 0 no se usa.
func Frequencies(rounds []Round) [MaxNumber + 1]int {
	var freq [MaxNumber + 1]int
	for _, r := range rounds {
		for _, n := range r.Drawn.Numbers() {
			freq[n]++
		}
	}
	return freq
}

// MostFrequent devuelve hasta `count` números ordenados por frecuencia descendente
// (empates por número ascendente), excluyendo los de `exclude`.
// Los números sin apariciones también cuentan, así que siempre se completa `count`
// mientras queden números fuera de `exclude`.
func MostFrequent(rounds []Round, count int, exclude NumberSet) []int {
	if count <= 0 {
		return nil
	}
	freq := Frequencies(rounds)

	candidates := make([]int, 0, MaxNumber)
	for n := MinNumber; n <= MaxNumber; n++ {
		if !exclude.Has(n) {
			candidates = append(candidates, n)
		}
	}
	slices.SortStableFunc(candidates, func(a, b int) int {
		return freq[b] - freq[a]
	})

	if count > len(candidates) {
		count = len(candidates)
	}
	return candidates[:count]
}
