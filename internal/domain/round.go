package domain

import "errors"

// ErrInvalidConfig se devuelve cuando un parámetro de análisis está fuera de rango.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultDrawCount es la cantidad de números sorteados por ronda en esta variante.
const DefaultDrawCount = 10

// Round es un sorteo histórico. Index define el orden cronológico.
type Round struct {
	Index int
	Drawn NumberSet
}

// DrawnSets extrae los conjuntos sorteados de una ventana de rondas.
func DrawnSets(rounds []Round) []NumberSet {
	out := make([]NumberSet, len(rounds))
	for i, r := range rounds {
		out[i] = r.Drawn
	}
	return out
}

// Window devuelve rounds[from:to] acotado a los límites del slice.
// Nunca devuelve rondas en o después de `to`.
func Window(rounds []Round, from, to int) []Round {
	if to > len(rounds) {
		to = len(rounds)
	}
	if from < 0 {
		from = 0
	}
	if from >= to {
		return nil
	}
	return rounds[from:to]
}

// Tail devuelve las últimas n rondas (o todas si hay menos).
func Tail(rounds []Round, n int) []Round {
	if n <= 0 {
		return nil
	}
	if n >= len(rounds) {
		return rounds
	}
	return rounds[len(rounds)-n:]
}
