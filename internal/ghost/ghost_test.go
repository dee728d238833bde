package ghost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsight/internal/store"
)

func ptr[T any](v T) *T { return &v }

// run builds an easy-typed activity around 40 minutes / 6 km / 50 m gain.
func run(id int64, daysAgo int, movingTime int, distance, elevation, hr, eff float64) store.Activity {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
	return store.Activity{
		ID: id, AthleteID: 1, StartTime: start,
		MovingTime: movingTime, Distance: distance, ElevationGain: elevation,
		AverageHeartrate: ptr(hr), Efficiency: ptr(eff),
		WorkoutType: ptr(WorkoutEasy),
	}
}

func target() store.Activity {
	return run(100, 0, 2400, 6000, 50, 150, 2.85) // 40 min, 6 km, 50 m
}

func TestHardFiltersAreAbsolute(t *testing.T) {
	history := []store.Activity{
		run(1, 7, 2400, 6000, 50, 150, 3.0),  // identical: survives
		run(2, 14, 3000, 6000, 50, 150, 3.0), // duration 25% off
		run(3, 21, 2400, 7200, 50, 150, 3.0), // distance 20% off
		run(4, 28, 2400, 6000, 70, 150, 3.0), // elevation 40% off
		run(5, 35, 2450, 6100, 52, 151, 3.0), // close: survives
	}
	hardType := run(6, 42, 2400, 6000, 50, 150, 3.0)
	hardType.WorkoutType = ptr(WorkoutTempo) // type mismatch
	history = append(history, hardType)

	b := Compare(target(), history, Config{MinCohort: 2})
	require.Equal(t, StatusOK, b.Status)

	ids := make(map[int64]bool)
	for _, e := range b.Cohort {
		ids[e.ActivityID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[5])
	assert.False(t, ids[2], "a failed duration filter is not rescued by score")
	assert.False(t, ids[3])
	assert.False(t, ids[4])
	assert.False(t, ids[6], "workout-type mismatch is a hard filter")
}

func TestSimilarityBoundedByWeightSum(t *testing.T) {
	history := []store.Activity{
		run(1, 7, 2400, 6000, 50, 150, 3.0),
		run(2, 14, 2500, 6200, 54, 155, 3.1),
		run(3, 21, 2600, 6400, 46, 145, 2.9),
	}
	b := Compare(target(), history, Config{})
	require.Equal(t, StatusOK, b.Status)

	for _, e := range b.Cohort {
		assert.LessOrEqual(t, e.Similarity, DefaultWeights().Sum()+1e-9)
		assert.GreaterOrEqual(t, e.Similarity, 0.0)
	}

	// An identical effort ranks first.
	assert.Equal(t, int64(1), b.Cohort[0].ActivityID)
}

func TestSmallCohortIsFlaggedNotRefused(t *testing.T) {
	// Seven candidates, only two pass the filters. With the cohort floor
	// configured at 2, the result is a usable baseline flagged as below
	// the target size, not a no-comparable-history status.
	history := []store.Activity{
		run(1, 7, 2400, 6000, 50, 150, 3.0),
		run(2, 10, 2450, 6100, 52, 148, 3.1),
		run(3, 14, 3600, 6000, 50, 150, 3.0),
		run(4, 21, 2400, 9000, 50, 150, 3.0),
		run(5, 28, 2400, 6000, 200, 150, 3.0),
		run(6, 35, 1200, 3000, 10, 150, 3.0),
		run(7, 42, 2400, 6000, 120, 150, 3.0),
	}

	b := Compare(target(), history, Config{MinCohort: 2})
	require.Equal(t, StatusOK, b.Status)
	assert.Len(t, b.Cohort, 2)
	assert.True(t, b.CohortBelowTarget)

	// At the default floor of 3 the same history is refused outright.
	b = Compare(target(), history, Config{})
	assert.Equal(t, StatusNoComparableHistory, b.Status)
}

func TestTargetScoreInvertsLowerIsBetter(t *testing.T) {
	history := []store.Activity{
		run(1, 7, 2400, 6000, 50, 150, 3.0),
		run(2, 14, 2450, 6100, 52, 148, 3.0),
		run(3, 21, 2500, 5900, 48, 152, 3.0),
	}

	// Target efficiency 2.85 beats the cohort mean of 3.0.
	b := Compare(target(), history, Config{})
	require.Equal(t, StatusOK, b.Status)
	assert.InDelta(t, 3.0, b.MeanEfficiency, 1e-9)
	assert.Greater(t, b.TargetScore, 100.0)

	// A slower target lands under 100.
	slow := target()
	slow.Efficiency = ptr(3.3)
	b = Compare(slow, history, Config{})
	assert.Less(t, b.TargetScore, 100.0)
}

func TestClassifyWorkout(t *testing.T) {
	tests := []struct {
		name string
		act  store.Activity
		want string
	}{
		{
			name: "stored type wins",
			act:  store.Activity{WorkoutType: ptr(WorkoutTempo), MovingTime: 1200},
			want: WorkoutTempo,
		},
		{
			name: "short and very hard is interval",
			act:  store.Activity{MovingTime: 1800, Distance: 6000, AverageHeartrate: ptr(172.0)},
			want: WorkoutInterval,
		},
		{
			name: "sustained hard is tempo",
			act:  store.Activity{MovingTime: 3600, Distance: 12000, AverageHeartrate: ptr(160.0)},
			want: WorkoutTempo,
		},
		{
			name: "ninety minutes is long",
			act:  store.Activity{MovingTime: 5400, Distance: 14000, AverageHeartrate: ptr(140.0)},
			want: WorkoutLong,
		},
		{
			name: "very low heart rate is recovery",
			act:  store.Activity{MovingTime: 1800, Distance: 4000, AverageHeartrate: ptr(120.0)},
			want: WorkoutRecovery,
		},
		{
			name: "no heart rate defaults to easy",
			act:  store.Activity{MovingTime: 2400, Distance: 6000},
			want: WorkoutEasy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWorkout(tt.act, 185))
		})
	}
}
