package correlation

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainsight/internal/timeseries"
)

func day(offset int) time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

// laggedSnapshot builds a snapshot where efficiency on day d is a linear
// function of the input on day d-lag.
func laggedSnapshot(inputName string, days, lag int, slope float64) *timeseries.Snapshot {
	rng := rand.New(rand.NewSource(7))

	input := make(timeseries.Series, days)
	for i := range input {
		input[i] = timeseries.Point{Date: day(i), Value: 7.5 + rng.NormFloat64()}
	}

	var output timeseries.Series
	for i := lag; i < days; i++ {
		output = append(output, timeseries.Point{
			Date:  day(i),
			Value: 3.0 + slope*(input[i-lag].Value-7.5),
		})
	}

	return &timeseries.Snapshot{
		AthleteID:  1,
		Window:     timeseries.Window{Days: days, Start: day(0), End: day(days)},
		Inputs:     map[string]timeseries.Series{inputName: input},
		Efficiency: output,
	}
}

func TestScreenFindsLaggedRelationship(t *testing.T) {
	snap := laggedSnapshot("sleep_hours", 40, 2, -0.1)

	results := Screen(snap, Config{})
	require.NotEmpty(t, results)

	var found bool
	for _, r := range results {
		// Every retained pair must independently satisfy the bar.
		assert.GreaterOrEqual(t, math.Abs(r.R), 0.3)
		assert.Less(t, r.PValue, 0.05)
		assert.GreaterOrEqual(t, r.N, 10)

		if r.Input == "sleep_hours" && r.LagDays == 2 {
			found = true
			assert.Less(t, r.R, -0.99)
			assert.Equal(t, DirectionNegative, r.Direction)
			assert.Equal(t, StrengthStrong, r.Strength)
		}
	}
	assert.True(t, found, "expected a significant result at lag 2")
}

func TestScreenDiscardsSmallSamples(t *testing.T) {
	// Only 8 aligned days: below the floor of 10, nothing may be emitted
	// no matter how strong the relationship looks.
	snap := laggedSnapshot("sleep_hours", 8, 0, -0.1)
	assert.Empty(t, Screen(snap, Config{}))
}

func TestScreenSkipsZeroVariance(t *testing.T) {
	snap := laggedSnapshot("sleep_hours", 40, 2, -0.1)

	flat := make(timeseries.Series, 40)
	for i := range flat {
		flat[i] = timeseries.Point{Date: day(i), Value: 5}
	}
	snap.Inputs["soreness"] = flat

	for _, r := range Screen(snap, Config{}) {
		assert.NotEqual(t, "soreness", r.Input, "zero-variance input must be skipped")
	}
}

func TestStrengthFor(t *testing.T) {
	tests := []struct {
		absR float64
		want Strength
	}{
		{0.1, StrengthWeak},
		{0.29, StrengthWeak},
		{0.3, StrengthModerate},
		{0.69, StrengthModerate},
		{0.7, StrengthStrong},
		{1.0, StrengthStrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrengthFor(tt.absR), "|r|=%v", tt.absR)
	}
}
