package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

var testPayouts = domain.PayoutTable{"high": {5: {5: 40, 4: 3}}}

func TestEvaluate_FullHitProfit(t *testing.T) {
	pattern := domain.NewNumberSet(1, 2, 3, 4, 5)
	forward := make([]domain.NumberSet, 30)
	forward[9] = domain.NewNumberSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	out := Evaluate(pattern, forward, testPayouts, "high")
	assert.True(t, out.Completed)
	assert.Equal(t, 10, out.RoundsToHit)
	assert.Equal(t, 30.0, out.Profit)
	assert.True(t, out.Maintaining())
}

func TestEvaluate_FirstCompletionWins(t *testing.T) {
	pattern := domain.NewNumberSet(1, 2)
	forward := sets([]int{1}, []int{1, 2}, []int{1, 2})
	out := Evaluate(pattern, forward, nil, "")
	assert.True(t, out.Completed)
	assert.Equal(t, 2, out.RoundsToHit)
	assert.False(t, out.Tracked)
	assert.Zero(t, out.Profit)
}

func TestEvaluate_PartialHitProfit(t *testing.T) {
	pattern := domain.NewNumberSet(1, 2, 3, 4, 5)
	forward := make([]domain.NumberSet, 30)
	forward[1] = domain.NewNumberSet(1, 2, 3, 4, 20) // 4 aciertos en la ronda 2 → 3 - 2 = 1

	out := Evaluate(pattern, forward, testPayouts, "high")
	assert.False(t, out.Completed)
	assert.Equal(t, 1.0, out.Profit)
	assert.True(t, out.Maintaining())
}

func TestEvaluate_PartialKeepsBestNegative(t *testing.T) {
	pattern := domain.NewNumberSet(1, 2, 3, 4, 5)
	forward := make([]domain.NumberSet, 30)
	forward[5] = domain.NewNumberSet(1, 2, 3, 4) // 3 - 6 = -3
	forward[9] = domain.NewNumberSet(1, 2, 3, 4) // 3 - 10 = -7

	out := Evaluate(pattern, forward, testPayouts, "high")
	assert.Equal(t, -3.0, out.Profit)
	assert.False(t, out.Maintaining())
}

func TestEvaluate_StopsAtFirstNonNegativePartial(t *testing.T) {
	table := domain.PayoutTable{"high": {5: {3: 2, 4: 50}}}
	pattern := domain.NewNumberSet(1, 2, 3, 4, 5)
	forward := make([]domain.NumberSet, 30)
	forward[0] = domain.NewNumberSet(1, 2, 3)    // 2 - 1 = 1, corta aquí
	forward[2] = domain.NewNumberSet(1, 2, 3, 4) // 50 - 3 = 47, no se alcanza

	out := Evaluate(pattern, forward, table, "high")
	assert.Equal(t, 1.0, out.Profit)
}

func TestEvaluate_NoPayingHitLosesWindow(t *testing.T) {
	pattern := domain.NewNumberSet(1, 2, 3, 4, 5)
	forward := make([]domain.NumberSet, 30)
	forward[0] = domain.NewNumberSet(1, 2) // 2 aciertos: sin pago

	out := Evaluate(pattern, forward, testPayouts, "high")
	assert.Equal(t, -30.0, out.Profit)
	assert.True(t, out.Tracked)
}

func TestEvaluateAt_InsufficientFuture(t *testing.T) {
	drawn := make([]domain.NumberSet, 40)
	_, ok := EvaluateAt(domain.NewNumberSet(1), drawn, 20, 30, nil, "")
	assert.False(t, ok)

	_, ok = EvaluateAt(domain.NewNumberSet(1), drawn, 10, 30, nil, "")
	require.True(t, ok)
}
