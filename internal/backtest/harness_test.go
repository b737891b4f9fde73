package backtest

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kenolab/internal/domain"
	"github.com/alejandrodnm/kenolab/internal/strategy"
)

func randomHistory(n int, seed uint64) []domain.Round {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
	out := make([]domain.Round, n)
	for i := range out {
		var s domain.NumberSet
		for _, p := range rng.Perm(domain.MaxNumber)[:domain.DefaultDrawCount] {
			s = s.Add(p + 1)
		}
		out[i] = domain.Round{Index: i, Drawn: s}
	}
	return out
}

func smallMomentumConfig() domain.BacktestConfig {
	cfg := domain.DefaultMomentumConfig()
	cfg.PatternSize = 5
	cfg.BaselineWindow = 20
	cfg.StartBuffer = 10
	return cfg
}

func smallPatternConfig() domain.BacktestConfig {
	cfg := domain.DefaultPatternConfig(3)
	cfg.DiscoveryWindow = 40
	cfg.SampleSize = 20
	cfg.TrackingWindow = 100
	cfg.DiscoveryTopN = 30
	cfg.StartBuffer = 10
	cfg.Stride = 10
	cfg.MinHits, cfg.MaxHits = 1, 2
	return cfg
}

// spySource registra qué prefijo recibe en cada punto.
type spySource struct {
	t     *testing.T
	calls int
	inner strategy.Source
}

func (s *spySource) Name() string { return "spy" }

func (s *spySource) Patterns(prefix []domain.Round, round int) ([]strategy.ScoredPattern, error) {
	s.calls++
	require.Equal(s.t, round, len(prefix), "prefix must end right before the evaluated round")
	require.Equal(s.t, len(prefix), cap(prefix), "prefix must not expose later rounds")
	if len(prefix) > 0 {
		require.Less(s.t, prefix[len(prefix)-1].Index, round)
	}
	return s.inner.Patterns(prefix, round)
}

func TestRun_NoLookAhead(t *testing.T) {
	history := randomHistory(400, 1)

	for _, cfg := range []domain.BacktestConfig{smallMomentumConfig(), smallPatternConfig()} {
		spy := &spySource{t: t}
		r := NewRunner(history, nil, WithSourceFactory(func(c domain.BacktestConfig) (strategy.Source, error) {
			inner, err := strategy.New(c)
			spy.inner = inner
			return spy, err
		}))
		_, err := r.Run(context.Background(), cfg)
		require.NoError(t, err)
		assert.Positive(t, spy.calls, "strategy %s", cfg.Strategy)
	}
}

func TestRun_FutureRoundsDoNotAffectPatterns(t *testing.T) {
	history := randomHistory(300, 2)
	cfg := smallPatternConfig()

	collect := func(h []domain.Round) [][]strategy.ScoredPattern {
		var got [][]strategy.ScoredPattern
		r := NewRunner(h, nil, WithSourceFactory(func(c domain.BacktestConfig) (strategy.Source, error) {
			inner, err := strategy.New(c)
			return recordingSource{inner: inner, out: &got}, err
		}))
		_, err := r.Run(context.Background(), cfg)
		require.NoError(t, err)
		return got
	}

	// Desde el segundo punto en adelante todas las rondas pasan a ser iguales.
	// Los puntos con idx <= altered no ven ninguna de ellas en su prefijo.
	altered := cfg.StartIndex() + cfg.Step()
	changed := make([]domain.Round, len(history))
	copy(changed, history)
	for i := altered; i < len(changed); i++ {
		changed[i].Drawn = domain.NewNumberSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	}

	before, after := collect(history), collect(changed)
	require.Len(t, after, len(before))
	require.Greater(t, len(before), 2)

	earlier := 0
	for idx := cfg.StartIndex(); idx <= altered; idx += cfg.Step() {
		earlier++
	}
	assert.Equal(t, before[:earlier], after[:earlier], "points before the altered round must not change")
	assert.NotEqual(t, before[earlier], after[earlier], "the altered rounds must reach later prefixes")
}

type recordingSource struct {
	inner strategy.Source
	out   *[][]strategy.ScoredPattern
}

func (s recordingSource) Name() string { return s.inner.Name() }

func (s recordingSource) Patterns(prefix []domain.Round, round int) ([]strategy.ScoredPattern, error) {
	p, err := s.inner.Patterns(prefix, round)
	*s.out = append(*s.out, p)
	return p, err
}

func TestRun_LookaheadBeyondHistory(t *testing.T) {
	cfg := smallMomentumConfig()
	cfg.Lookahead = 500

	r := NewRunner(randomHistory(100, 3), nil)
	res, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Zero(t, res.TotalPredictions)
	assert.Zero(t, res.EvaluationPoints)
	assert.Zero(t, res.SuccessRate)
	assert.Zero(t, res.AvgRoundsToHit)
}

func TestRun_SuccessRateBounds(t *testing.T) {
	history := randomHistory(600, 4)
	r := NewRunner(history, domain.DefaultPayoutTable())

	for _, cfg := range []domain.BacktestConfig{smallMomentumConfig(), smallPatternConfig()} {
		cfg.TrackMaintaining = true
		res, err := r.Run(context.Background(), cfg)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.SuccessRate, 0.0)
		assert.LessOrEqual(t, res.SuccessRate, 100.0)
		if res.TotalPredictions == 0 {
			assert.Zero(t, res.SuccessRate)
		} else {
			assert.InDelta(t, float64(res.TotalCompletions)/float64(res.TotalPredictions)*100, res.SuccessRate, 1e-9)
		}
		assert.LessOrEqual(t, res.SuccessRateLow, res.SuccessRate)
		assert.GreaterOrEqual(t, res.SuccessRateHigh, res.SuccessRate)
		assert.LessOrEqual(t, res.TotalMaintaining, res.TotalPredictions)
		assert.NotEmpty(t, res.RunID)
		assert.True(t, res.ProfitTracked)
	}
}

func TestRun_ConstantHistoryAlwaysCompletes(t *testing.T) {
	history := make([]domain.Round, 200)
	for i := range history {
		history[i] = domain.Round{Index: i, Drawn: domain.NewNumberSet(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)}
	}
	cfg := smallMomentumConfig()
	cfg.TrackMaintaining = true

	r := NewRunner(history, domain.PayoutTable{"high": {5: {5: 40}}})
	res, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Positive(t, res.TotalPredictions)
	assert.Equal(t, 100.0, res.SuccessRate)
	assert.Equal(t, 1.0, res.AvgRoundsToHit)
	assert.Equal(t, 39.0, res.AvgProfit)
	assert.Equal(t, 100.0, res.MaintainingRate)
	assert.Equal(t, 1, res.PatternChanges)
	assert.InDelta(t, 5000.0, res.BalanceScore, 1e-9)
	assert.Equal(t, 1.0, res.AvgPredictionsPerPoint)
}

func TestRun_MomentumPredictionsPerPoint(t *testing.T) {
	history := randomHistory(300, 5)
	cfg := smallMomentumConfig()

	res, err := NewRunner(history, nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	// Un patrón por punto: de StartIndex a len-lookahead cada Step.
	points := 0
	for idx := cfg.StartIndex(); idx < len(history)-cfg.Lookahead; idx += cfg.Step() {
		points++
	}
	assert.Equal(t, points, res.TotalPredictions)
	assert.Equal(t, points, res.EvaluationPoints)
	assert.False(t, res.ProfitTracked)
	assert.Zero(t, res.AvgProfit)
}

func TestRun_MomentumRefreshesWhenStartUnaligned(t *testing.T) {
	history := randomHistory(3000, 8)
	cfg := domain.DefaultMomentumConfig()
	cfg.BaselineWindow, cfg.RefreshFrequency = 25, 10

	res, err := NewRunner(history, nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Positive(t, res.EvaluationPoints)
	assert.Greater(t, res.PatternChanges, 1)
}

func TestRun_MomentumHonorsStride(t *testing.T) {
	history := randomHistory(3000, 9)
	cfg := domain.DefaultMomentumConfig()
	cfg.BaselineWindow, cfg.RefreshFrequency = 25, 10
	cfg.Stride = 1

	res, err := NewRunner(history, nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	points := 0
	for idx := cfg.StartIndex(); idx < len(history)-cfg.Lookahead; idx += cfg.Step() {
		points++
	}
	assert.Equal(t, len(history)-cfg.Lookahead-cfg.StartIndex(), points)
	assert.Equal(t, points, res.EvaluationPoints)
	assert.Greater(t, res.PatternChanges, 1)
	// El patrón solo cambia en rondas múltiplo de RefreshFrequency.
	assert.LessOrEqual(t, res.PatternChanges, points/cfg.RefreshFrequency+1)
}

func TestRun_InvalidConfig(t *testing.T) {
	r := NewRunner(randomHistory(50, 6), nil)
	cfg := smallMomentumConfig()
	cfg.Lookahead = 0
	_, err := r.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	cfg = smallMomentumConfig()
	cfg.TrackMaintaining = true
	_, err = r.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(randomHistory(300, 7), nil).Run(ctx, smallMomentumConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClopperPearson(t *testing.T) {
	lo, hi := clopperPearson(0, 10, 0.95)
	assert.Zero(t, lo)
	assert.InDelta(t, 0.3085, hi, 1e-3)

	lo, hi = clopperPearson(10, 10, 0.95)
	assert.InDelta(t, 0.6915, lo, 1e-3)
	assert.Equal(t, 1.0, hi)

	lo, hi = clopperPearson(0, 0, 0.95)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}
