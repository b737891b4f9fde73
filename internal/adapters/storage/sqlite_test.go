package storage_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/kenolab/internal/adapters/storage"
	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResult(size int, success, balance float64) domain.BacktestResult {
	return domain.BacktestResult{
		RunID:            uuid.NewString(),
		Config:           domain.DefaultPatternConfig(size),
		PatternSize:      size,
		TotalPredictions: 200,
		TotalCompletions: int(success * 2),
		SuccessRate:      success,
		AvgRoundsToHit:   12,
		BalanceScore:     balance,
	}
}

func TestSQLiteStorage_SaveAndTopResults(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	set := domain.ResultSet{
		Name: "optimization-results-p5-high",
		Groups: map[string][]domain.BacktestResult{
			domain.SizeKey(5): {makeResult(5, 8, 10), makeResult(5, 24, 40), makeResult(5, 24, 90)},
			domain.SizeKey(3): {makeResult(3, 50, 5)},
		},
	}
	id, err := db.SaveResults(ctx, set)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	top, err := db.TopResults(ctx, domain.SizeKey(5), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// Ordenados por success desc, empate por balance desc
	assert.InDelta(t, 24.0, top[0].SuccessRate, 0.001)
	assert.InDelta(t, 90.0, top[0].BalanceScore, 0.001)
	assert.InDelta(t, 40.0, top[1].BalanceScore, 0.001)
	assert.Equal(t, domain.StrategyPattern, top[0].Config.Strategy)
	assert.Equal(t, 5, top[0].Config.PatternSize)
}

func TestSQLiteStorage_SaveEmptySet(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.SaveResults(context.Background(), domain.ResultSet{Name: "empty"})
	require.NoError(t, err)

	batches, err := db.Batches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, 0, batches[0].Total)
}

func TestSQLiteStorage_TopResults_UnknownGroup(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	top, err := db.TopResults(context.Background(), "pattern_size_9", 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestSQLiteStorage_MultipleBatches(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	// Primer lote
	_, err = db.SaveResults(ctx, domain.ResultSet{
		Name:   "momentum-results-single",
		Groups: map[string][]domain.BacktestResult{"single": {makeResult(10, 3, 1)}},
		Single: true,
	})
	require.NoError(t, err)

	// Segundo lote, mismo grupo
	_, err = db.SaveResults(ctx, domain.ResultSet{
		Name:   "momentum-results-single",
		Groups: map[string][]domain.BacktestResult{"single": {makeResult(10, 7, 2)}},
		Single: true,
	})
	require.NoError(t, err)

	batches, err := db.Batches(ctx)
	require.NoError(t, err)
	assert.Len(t, batches, 2)

	top, err := db.TopResults(ctx, "single", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.InDelta(t, 7.0, top[0].SuccessRate, 0.001)
}
