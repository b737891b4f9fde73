package domain

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundsOf(draws ...[]int) []Round {
	out := make([]Round, len(draws))
	for i, d := range draws {
		out[i] = Round{Index: i, Drawn: NewNumberSet(d...)}
	}
	return out
}

func seededHistory(n, perRound int, seed uint64) []Round {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]Round, n)
	for i := range out {
		var s NumberSet
		for _, p := range rng.Perm(MaxNumber)[:perRound] {
			s = s.Add(p + 1)
		}
		out[i] = Round{Index: i, Drawn: s}
	}
	return out
}

func TestComputeMomentum_NotComputableBeforeBaseline(t *testing.T) {
	history := seededHistory(200, 20, 1234)

	for prefix := 0; prefix < 50; prefix++ {
		for n := MinNumber; n <= MaxNumber; n++ {
			_, ok := ComputeMomentum(n, history[:prefix], 5, 50)
			require.False(t, ok, "prefix %d number %d", prefix, n)
		}
	}

	for _, prefix := range []int{50, 51, 120, 200} {
		for n := MinNumber; n <= MaxNumber; n++ {
			m, ok := ComputeMomentum(n, history[:prefix], 5, 50)
			require.True(t, ok, "prefix %d number %d", prefix, n)
			// 20 de 40 por ronda durante 50 rondas: ningún número queda sin baseline.
			assert.False(t, m.Unbounded, "prefix %d number %d", prefix, n)
		}
	}
}

func TestComputeMomentum_AlwaysPresentIsOne(t *testing.T) {
	draws := make([][]int, 50)
	for i := range draws {
		draws[i] = []int{7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	}
	m, ok := ComputeMomentum(7, roundsOf(draws...), 5, 50)
	require.True(t, ok)
	assert.False(t, m.Unbounded)
	assert.Equal(t, 1.0, m.Ratio)
}

func TestComputeMomentum_ScaleInvariant(t *testing.T) {
	// recent 1/5, baseline 4/50 → 2.5; con conteos ×2: recent 2/10, baseline 8/100 → 2.5.
	build := func(scale int) []Round {
		detection, baseline := 5*scale, 50*scale
		rounds := make([]Round, baseline)
		placed := 0
		for i := baseline - 1; i >= 0 && placed < scale; i-- {
			rounds[i].Drawn = NewNumberSet(3)
			placed++
		}
		placed = 0
		for i := 0; i < baseline-detection && placed < 3*scale; i++ {
			rounds[i].Drawn = NewNumberSet(3)
			placed++
		}
		return rounds
	}

	m1, ok := ComputeMomentum(3, build(1), 5, 50)
	require.True(t, ok)
	m2, ok := ComputeMomentum(3, build(2), 10, 100)
	require.True(t, ok)
	assert.InDelta(t, 2.5, m1.Ratio, 1e-12)
	assert.InDelta(t, m1.Ratio, m2.Ratio, 1e-12)
}

func TestComputeMomentum_ZeroBaseline(t *testing.T) {
	rounds := make([]Round, 50)
	m, ok := ComputeMomentum(9, rounds, 5, 50)
	require.True(t, ok)
	assert.False(t, m.Unbounded)
	assert.Equal(t, 0.0, m.Value())

	// Baseline más corto que la ventana reciente: el número aparece en la
	// reciente pero no en el baseline.
	rounds = roundsOf([]int{9}, []int{1}, []int{1})
	m, ok = ComputeMomentum(9, rounds, 3, 2)
	require.True(t, ok)
	assert.True(t, m.Unbounded)
	assert.True(t, m.AtLeast(1e12))
	assert.Equal(t, MomentumSentinel, m.Value())
}

func TestMomentum_CompareAndJSON(t *testing.T) {
	unbounded := Momentum{Unbounded: true}
	big := Momentum{Ratio: 5000}
	assert.Positive(t, unbounded.Compare(big))
	assert.Negative(t, big.Compare(unbounded))
	assert.Zero(t, Momentum{Ratio: 2}.Compare(Momentum{Ratio: 2}))

	data, err := json.Marshal(unbounded)
	require.NoError(t, err)
	assert.Equal(t, "999", string(data))
}

func TestHotNumbers_SortedByMomentum(t *testing.T) {
	var draws [][]int
	for i := range 45 {
		d := []int{1, 2}
		if i%9 == 0 {
			d = append(d, 20)
		}
		draws = append(draws, d)
	}
	// 30 solo aparece en la ventana reciente (momentum 10); 20 aparece 2 veces
	// en la reciente y 5 antes (0.4 / 0.14).
	for i := range 5 {
		d := []int{1, 2, 30}
		if i < 2 {
			d = append(d, 20)
		}
		draws = append(draws, d)
	}
	hot := HotNumbers(roundsOf(draws...), 5, 50, 1.5)
	require.Len(t, hot, 2)
	assert.Equal(t, 30, hot[0].Number)
	assert.Equal(t, 20, hot[1].Number)
	assert.InDelta(t, 0.4/0.14, hot[1].Momentum.Ratio, 1e-9)
	assert.True(t, hot[0].Hot)
}

func TestNumberStats_FortyEntries(t *testing.T) {
	stats, ok := NumberStats(seededHistory(60, 10, 9), 5, 50, 1.5)
	require.True(t, ok)
	require.Len(t, stats, MaxNumber)
	for i, s := range stats {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, s.Momentum.AtLeast(1.5), s.Hot)
	}

	_, ok = NumberStats(seededHistory(10, 10, 9), 5, 50, 1.5)
	assert.False(t, ok)
}

func TestMostFrequent(t *testing.T) {
	rounds := roundsOf([]int{4, 5, 6}, []int{5, 6}, []int{6})
	assert.Equal(t, []int{6, 5, 4, 1}, MostFrequent(rounds, 4, 0))
	assert.Equal(t, []int{5, 4}, MostFrequent(rounds, 2, NewNumberSet(6)))
	assert.Nil(t, MostFrequent(rounds, 0, 0))

	freq := Frequencies(rounds)
	assert.Equal(t, 3, freq[6])
	assert.Equal(t, 0, freq[0])
}
