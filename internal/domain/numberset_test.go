package domain

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSet_Basics(t *testing.T) {
	s := NewNumberSet(23, 1, 5, 5, 41, 0)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{1, 5, 23}, s.Numbers())
	assert.Equal(t, "[1 5 23]", s.String())
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(41))
	assert.False(t, s.Has(0))
}

func TestNumberSet_EqualityIgnoresOrder(t *testing.T) {
	assert.Equal(t, NewNumberSet(3, 2, 1), NewNumberSet(1, 2, 3))
}

func TestNumberSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewNumberSet(40, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `[2,40]`, string(data))

	var s NumberSet
	require.NoError(t, json.Unmarshal([]byte(`[7,3,7]`), &s))
	assert.Equal(t, NewNumberSet(3, 7), s)

	assert.Error(t, json.Unmarshal([]byte(`[0,3]`), &s))
}

func TestHitCount_CompletionConsistency(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for range 2000 {
		var pattern, drawn NumberSet
		for _, n := range rng.Perm(MaxNumber)[:1+rng.IntN(MaxPatternSize)] {
			pattern = pattern.Add(n + 1)
		}
		for _, n := range rng.Perm(MaxNumber)[:20] {
			drawn = drawn.Add(n + 1)
		}
		assert.Equal(t, HitCount(pattern, drawn) == pattern.Len(), IsComplete(pattern, drawn),
			"pattern %s drawn %s", pattern, drawn)
	}
}

func TestHitCount(t *testing.T) {
	pattern := NewNumberSet(1, 2, 3, 4, 5)
	assert.Equal(t, 3, HitCount(pattern, NewNumberSet(1, 3, 5, 7, 9)))
	assert.False(t, IsComplete(pattern, NewNumberSet(1, 3, 5, 7, 9)))
	assert.True(t, IsComplete(pattern, NewNumberSet(1, 2, 3, 4, 5, 6)))
}

func TestWindowAndTail(t *testing.T) {
	rounds := make([]Round, 10)
	for i := range rounds {
		rounds[i].Index = i
	}
	assert.Len(t, Window(rounds, -5, 3), 3)
	assert.Len(t, Window(rounds, 8, 50), 2)
	assert.Nil(t, Window(rounds, 5, 5))
	assert.Equal(t, 9, Tail(rounds, 3)[2].Index)
	assert.Len(t, Tail(rounds, 100), 10)
	assert.Nil(t, Tail(rounds, 0))
}

func TestForEachCombination_Count(t *testing.T) {
	var got []NumberSet
	ForEachCombination([]int{1, 2, 3, 4, 5}, 3, func(p NumberSet) {
		got = append(got, p)
	})
	require.Len(t, got, 10) // C(5,3)
	assert.Equal(t, NewNumberSet(1, 2, 3), got[0])
	assert.Equal(t, NewNumberSet(3, 4, 5), got[9])
	for _, p := range got {
		assert.Equal(t, 3, p.Len())
	}
}

func TestForEachCombination_KLargerThanSet(t *testing.T) {
	called := false
	ForEachCombination([]int{1, 2}, 3, func(NumberSet) { called = true })
	assert.False(t, called)
}
