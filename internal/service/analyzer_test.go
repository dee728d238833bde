package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsight/internal/causality"
	"trainsight/internal/config"
	"trainsight/internal/ghost"
	"trainsight/internal/store"
	"trainsight/internal/timeseries"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, *store.Store) {
	t.Helper()
	s, err := store.OpenTest()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, config.DefaultConfig()), s
}

func ptr[T any](v T) *T { return &v }

// seedSleepDrivenCorpus writes 90 days of observations and daily runs where
// efficiency tracks the sleep from two nights earlier. Returns the as-of
// time whose 90-day window covers exactly the seeded range.
func seedSleepDrivenCorpus(t *testing.T, s *store.Store, athleteID int64) time.Time {
	t.Helper()

	asOf := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(5))

	sleep := make([]float64, 90)
	for d := 0; d < 90; d++ {
		sleep[d] = 7.5 + rng.NormFloat64()
		obs := store.DailyObservation{
			AthleteID:  athleteID,
			Date:       start.AddDate(0, 0, d).Format("2006-01-02"),
			Field:      timeseries.FieldSleepHours,
			Value:      sleep[d],
			RecordedAt: start.AddDate(0, 0, d).Add(8 * time.Hour),
		}
		require.NoError(t, s.InsertObservation(&obs))
	}

	for d := 2; d < 90; d++ {
		eff := 3.0 - 0.15*(sleep[d-2]-7.5) + 0.01*rng.NormFloat64()
		a := store.Activity{
			ID:         int64(1000 + d),
			AthleteID:  athleteID,
			StartTime:  start.AddDate(0, 0, d).Add(9 * time.Hour),
			MovingTime: 2400, Distance: 6000, ElevationGain: 50,
			AverageHeartrate: ptr(150.0),
			Efficiency:       ptr(eff),
			WorkoutType:      ptr(ghost.WorkoutEasy),
		}
		require.NoError(t, s.UpsertActivity(&a))
	}
	return asOf
}

func TestAnalyzeFindsSleepLagTwo(t *testing.T) {
	analyzer, s := newTestAnalyzer(t)
	asOf := seedSleepDrivenCorpus(t, s, 1)

	report, err := analyzer.Analyze(context.Background(), 1, Options{AsOf: asOf})
	require.NoError(t, err)
	require.Equal(t, timeseries.StatusOK, report.Status)

	var foundCorr bool
	for _, r := range report.Correlations {
		if r.Input == timeseries.FieldSleepHours && r.LagDays == 2 {
			foundCorr = true
			assert.Negative(t, r.R)
			assert.Less(t, r.PValue, 0.05)
		}
	}
	assert.True(t, foundCorr, "lag-2 sleep correlation not screened in")

	var ind *causality.Indicator
	for i := range report.Indicators {
		if report.Indicators[i].Input == timeseries.FieldSleepHours {
			ind = &report.Indicators[i]
		}
	}
	require.NotNil(t, ind, "no readiness indicator for sleep")
	assert.Equal(t, causality.LoopReadiness, ind.Loop)
	assert.Equal(t, 2, ind.OptimalLag)
	assert.Equal(t, causality.ConfidenceHigh, ind.Confidence)

	assert.NotEmpty(t, report.Insights)
	assert.NotEmpty(t, report.Context.Indicators)
	assert.NotEmpty(t, report.Efficiency)
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	report, err := analyzer.Analyze(context.Background(), 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, timeseries.StatusNoActivityData, report.Status)
	assert.Empty(t, report.Correlations)
	assert.Empty(t, report.Indicators)
	assert.Empty(t, report.Insights)
}

func TestAnalyzeRejectsBadWindow(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	_, err := analyzer.Analyze(context.Background(), 1, Options{WindowDays: 10})
	assert.ErrorIs(t, err, timeseries.ErrWindowOutOfRange)

	_, err = analyzer.Analyze(context.Background(), 1, Options{WindowDays: 400})
	assert.ErrorIs(t, err, timeseries.ErrWindowOutOfRange)
}

func TestAnalyzeCachesPerAthleteAndWindow(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)
	ctx := context.Background()

	first, err := analyzer.Analyze(ctx, 1, Options{})
	require.NoError(t, err)
	second, err := analyzer.Analyze(ctx, 1, Options{})
	require.NoError(t, err)
	assert.Same(t, first, second, "repeat call must hit the cache")

	// A different window is a different key.
	other, err := analyzer.Analyze(ctx, 1, Options{WindowDays: 60})
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	// Any new observation invalidates the athlete's reports wholesale.
	obs := store.DailyObservation{
		AthleteID: 1, Date: "2026-06-01", Field: timeseries.FieldSleepHours,
		Value: 7, RecordedAt: time.Now().UTC(),
	}
	require.NoError(t, analyzer.RecordObservation(&obs))

	third, err := analyzer.Analyze(ctx, 1, Options{})
	require.NoError(t, err)
	assert.NotSame(t, first, third, "write must invalidate the cached report")
}

func TestHistoricalAsOfBypassesCache(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)
	ctx := context.Background()
	asOf := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	first, err := analyzer.Analyze(ctx, 1, Options{AsOf: asOf})
	require.NoError(t, err)
	second, err := analyzer.Analyze(ctx, 1, Options{AsOf: asOf})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCompareActivityBuildsBaseline(t *testing.T) {
	analyzer, s := newTestAnalyzer(t)
	asOf := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	mkRun := func(id int64, day int, eff float64) store.Activity {
		return store.Activity{
			ID: id, AthleteID: 1,
			StartTime:  time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, day),
			MovingTime: 2400, Distance: 6000, ElevationGain: 50,
			AverageHeartrate: ptr(150.0),
			Efficiency:       ptr(eff),
			WorkoutType:      ptr(ghost.WorkoutEasy),
		}
	}
	for i, eff := range []float64{3.0, 3.1, 2.9} {
		a := mkRun(int64(i+1), i*3, eff)
		require.NoError(t, s.UpsertActivity(&a))
	}
	target := mkRun(10, 12, 2.8)
	require.NoError(t, s.UpsertActivity(&target))

	rep, err := analyzer.CompareActivity(context.Background(), 1, 10, Options{AsOf: asOf})
	require.NoError(t, err)

	require.Equal(t, ghost.StatusOK, rep.Baseline.Status)
	assert.Len(t, rep.Baseline.Cohort, 3)
	assert.InDelta(t, 3.0, rep.Baseline.MeanEfficiency, 1e-9)
	assert.Greater(t, rep.Baseline.TargetScore, 100.0)
	assert.NotEmpty(t, rep.Insights)
	require.NotNil(t, rep.Context.Baseline)
	assert.Equal(t, "ok", rep.Context.Baseline.Status)
}

func TestCompareActivityNoComparableHistory(t *testing.T) {
	analyzer, s := newTestAnalyzer(t)
	asOf := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	target := store.Activity{
		ID: 10, AthleteID: 1,
		StartTime:  time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
		MovingTime: 2400, Distance: 6000, ElevationGain: 50,
		Efficiency: ptr(2.8), WorkoutType: ptr(ghost.WorkoutEasy),
	}
	require.NoError(t, s.UpsertActivity(&target))

	rep, err := analyzer.CompareActivity(context.Background(), 1, 10, Options{AsOf: asOf})
	require.NoError(t, err)

	assert.Equal(t, ghost.StatusNoComparableHistory, rep.Baseline.Status)
	assert.Empty(t, rep.Features, "pattern recognition needs a cohort")
	assert.Empty(t, rep.Insights)
}

func TestCompareActivityOwnership(t *testing.T) {
	analyzer, s := newTestAnalyzer(t)

	other := store.Activity{
		ID: 50, AthleteID: 2,
		StartTime:  time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC),
		MovingTime: 2400, Distance: 6000,
	}
	require.NoError(t, s.UpsertActivity(&other))

	_, err := analyzer.CompareActivity(context.Background(), 1, 50, Options{})
	assert.ErrorIs(t, err, store.ErrActivityNotFound)

	_, err = analyzer.CompareActivity(context.Background(), 1, 999, Options{})
	assert.ErrorIs(t, err, store.ErrActivityNotFound)
}
