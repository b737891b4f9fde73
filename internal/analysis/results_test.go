package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kenolab/internal/domain"
)

func result(size, sample int, success, rounds, perPoint, profit float64) domain.BacktestResult {
	cfg := domain.DefaultPatternConfig(size)
	cfg.SampleSize = sample
	return domain.BacktestResult{
		Config:                 cfg,
		PatternSize:            size,
		SuccessRate:            success,
		AvgRoundsToHit:         rounds,
		AvgPredictionsPerPoint: perPoint,
		AvgProfit:              profit,
		ProfitTracked:          profit != 0,
		BalanceScore:           domain.BalanceScore(success, rounds, domain.DefaultBalanceReference),
	}
}

func TestAnalyzeSize_Highlights(t *testing.T) {
	results := []domain.BacktestResult{
		result(5, 50, 30, 20, 40, -2),  // mejor éxito
		result(5, 50, 6, 3, 10, 0),     // más rápido y mejor balance (6 × 50/3 = 100)
		result(5, 100, 12, 18, 2, 1.5), // más selectivo y único rentable
		result(5, 100, 2, 10, 1, 0),    // bajo el 5%
	}

	sa := AnalyzeSize("pattern_size_5", results)
	require.NotNil(t, sa.Best)
	assert.Equal(t, 30.0, sa.Best.SuccessRate)
	require.NotNil(t, sa.Fastest)
	assert.Equal(t, 3.0, sa.Fastest.AvgRoundsToHit)
	require.NotNil(t, sa.Balanced)
	assert.Equal(t, 6.0, sa.Balanced.SuccessRate)
	require.NotNil(t, sa.Profitable)
	assert.Equal(t, 1.5, sa.Profitable.AvgProfit)
	require.NotNil(t, sa.Selective)
	assert.Equal(t, 12.0, sa.Selective.SuccessRate)

	require.Len(t, sa.SampleImpact, 2)
	assert.Equal(t, SampleImpact{SampleSize: 50, AvgSuccess: 18, Tests: 2}, sa.SampleImpact[0])
	assert.Equal(t, SampleImpact{SampleSize: 100, AvgSuccess: 7, Tests: 2}, sa.SampleImpact[1])
}

func TestAnalyzeSize_NoQualifiers(t *testing.T) {
	sa := AnalyzeSize("pattern_size_6", []domain.BacktestResult{result(6, 25, 0, 0, 0, 0)})
	assert.NotNil(t, sa.Best)
	assert.Nil(t, sa.Fastest)
	assert.Nil(t, sa.Balanced)
	assert.Nil(t, sa.Profitable)
	assert.Nil(t, sa.Selective)

	empty := AnalyzeSize("pattern_size_7", nil)
	assert.Nil(t, empty.Best)
	assert.Zero(t, empty.Runs)
}

func TestAnalyzeResults_ComparisonAndRecommendations(t *testing.T) {
	report := AnalyzeResults(map[string][]domain.BacktestResult{
		"pattern_size_3": {result(3, 50, 40, 12, 20, 0), result(3, 25, 10, 2, 3, 0)},
		"pattern_size_5": {result(5, 50, 8, 20, 1.5, 0)},
	})

	require.Len(t, report.Sizes, 2)
	assert.Equal(t, "pattern_size_3", report.Sizes[0].Key)

	require.Len(t, report.Comparison, 2)
	assert.Equal(t, 3, report.Comparison[0].PatternSize)
	assert.InDelta(t, 8.0, report.Comparison[0].ExpectedHits, 1e-9) // 40% × 20

	rec := report.Recommendations
	require.NotNil(t, rec.HighestSuccess)
	assert.Equal(t, 40.0, rec.HighestSuccess.SuccessRate)
	require.NotNil(t, rec.BestBalance)
	assert.Equal(t, 10.0, rec.BestBalance.SuccessRate) // 10 × 50/2 = 250
	require.NotNil(t, rec.CleanestSignal)
	assert.Equal(t, 1.5, rec.CleanestSignal.AvgPredictionsPerPoint)
}

func TestBalanceOf_RecomputesMissingScore(t *testing.T) {
	r := domain.BacktestResult{SuccessRate: 10, AvgRoundsToHit: 25}
	assert.InDelta(t, 20.0, balanceOf(r), 1e-9)
}
