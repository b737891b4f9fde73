package domain

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// MinNumber y MaxNumber delimitan el universo cerrado de números del juego.
	MinNumber = 1
	MaxNumber = 40

	// MaxPatternSize es el tamaño máximo de patrón soportado por el análisis.
	MaxPatternSize = 10
)

// NumberSet es un conjunto de números en [1,40] representado como bitmask.
// El bit n corresponde al número n; el bit 0 nunca se usa.
//
// Se usa tanto para los números sorteados de una ronda como para los patrones:
// dos patrones son iguales si y solo si contienen los mismos números,
// sin importar el orden en que se descubrieron.
type NumberSet uint64

// NewNumberSet construye un conjunto a partir de números sueltos.
// Los números fuera de [1,40] se ignoran.
func NewNumberSet(nums ...int) NumberSet {
	var s NumberSet
	for _, n := range nums {
		s = s.Add(n)
	}
	return s
}

// ValidNumber devuelve true si n pertenece al universo del juego.
func ValidNumber(n int) bool {
	return n >= MinNumber && n <= MaxNumber
}

// Add devuelve el conjunto con n añadido.
func (s NumberSet) Add(n int) NumberSet {
	if !ValidNumber(n) {
		return s
	}
	return s | 1<<uint(n)
}

// Has devuelve true si n está en el conjunto.
func (s NumberSet) Has(n int) bool {
	if !ValidNumber(n) {
		return false
	}
	return s&(1<<uint(n)) != 0
}

// Len devuelve la cardinalidad del conjunto.
func (s NumberSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Intersect devuelve los números presentes en ambos conjuntos.
func (s NumberSet) Intersect(o NumberSet) NumberSet {
	return s & o
}

// Union devuelve los números presentes en alguno de los dos conjuntos.
func (s NumberSet) Union(o NumberSet) NumberSet {
	return s | o
}

// IsSubsetOf devuelve true si todos los números de s están en o.
func (s NumberSet) IsSubsetOf(o NumberSet) bool {
	return s&o == s
}

// Numbers devuelve los números en orden ascendente.
func (s NumberSet) Numbers() []int {
	out := make([]int, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}

// String devuelve el conjunto como "[1 5 23]".
func (s NumberSet) String() string {
	nums := s.Numbers()
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MarshalJSON serializa el conjunto como array ascendente de enteros.
func (s NumberSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Numbers())
}

// UnmarshalJSON acepta un array de enteros. Rechaza números fuera de rango.
func (s *NumberSet) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	var out NumberSet
	for _, n := range nums {
		if !ValidNumber(n) {
			return fmt.Errorf("domain.NumberSet: number %d out of range [%d,%d]", n, MinNumber, MaxNumber)
		}
		out = out.Add(n)
	}
	*s = out
	return nil
}

// HitCount devuelve |pattern ∩ drawn|.
func HitCount(pattern, drawn NumberSet) int {
	return pattern.Intersect(drawn).Len()
}

// IsComplete devuelve true si pattern ⊆ drawn.
// Equivale a HitCount(pattern, drawn) == pattern.Len().
func IsComplete(pattern, drawn NumberSet) bool {
	return pattern.IsSubsetOf(drawn)
}

// ForEachCombination invoca fn con cada k-combinación de nums, en orden lexicográfico.
func ForEachCombination(nums []int, k int, fn func(NumberSet)) {
	n := len(nums)
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		var p NumberSet
		for _, i := range idx {
			p = p.Add(nums[i])
		}
		fn(p)

		// Avanzar al siguiente índice que todavía puede moverse.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
