package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
	assert.Equal(t, 7.0, Mean([]float64{7}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name   string
		x, y   []float64
		wantR  float64
		wantOK bool
	}{
		{
			name:   "perfect positive",
			x:      []float64{1, 2, 3, 4, 5},
			y:      []float64{2, 4, 6, 8, 10},
			wantR:  1,
			wantOK: true,
		},
		{
			name:   "perfect negative",
			x:      []float64{1, 2, 3, 4, 5},
			y:      []float64{10, 8, 6, 4, 2},
			wantR:  -1,
			wantOK: true,
		},
		{
			name:   "zero variance is degenerate",
			x:      []float64{3, 3, 3, 3},
			y:      []float64{1, 2, 3, 4},
			wantOK: false,
		},
		{
			name:   "too few samples",
			x:      []float64{1, 2},
			y:      []float64{1, 2},
			wantOK: false,
		},
		{
			name:   "mismatched lengths",
			x:      []float64{1, 2, 3},
			y:      []float64{1, 2},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Pearson(tt.x, tt.y)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantR, r, 1e-9)
			}
		})
	}
}

func TestPearsonP(t *testing.T) {
	// r=0.5 over n=30: t = 0.5*sqrt(28/0.75) ~ 3.06, df=28,
	// two-tailed p just under 0.005.
	p := PearsonP(0.5, 30)
	assert.Less(t, p, 0.01)
	assert.Greater(t, p, 0.0001)

	// Two-tailed: sign of r must not matter.
	assert.InDelta(t, PearsonP(0.5, 30), PearsonP(-0.5, 30), 1e-12)

	// Weak correlation over a small sample is nowhere near significant.
	assert.Greater(t, PearsonP(0.1, 12), 0.5)

	// Undefined below 3 samples.
	assert.Equal(t, 1.0, PearsonP(0.9, 2))
}

func TestOLSRSS(t *testing.T) {
	// y = 2 + 3x fits exactly: residuals vanish.
	x := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{5, 8, 11, 14, 17, 20}
	rss, ok := OLSRSS(x, y)
	require.True(t, ok)
	assert.InDelta(t, 0, rss, 1e-9)

	// Underdetermined: as many parameters as rows.
	_, ok = OLSRSS([][]float64{{1}, {2}}, []float64{1, 2})
	assert.False(t, ok)

	// Noise around a trend leaves positive residuals.
	y2 := []float64{5.1, 7.9, 11.2, 13.8, 17.1, 19.9}
	rss2, ok := OLSRSS(x, y2)
	require.True(t, ok)
	assert.Greater(t, rss2, 0.0)
}

func TestFTest(t *testing.T) {
	// A large RSS reduction is significant.
	f, p, ok := FTest(100, 20, 1, 20)
	require.True(t, ok)
	assert.Greater(t, f, 10.0)
	assert.Less(t, p, 0.01)

	// No reduction: F=0, p=1.
	f, p, ok = FTest(50, 50, 1, 20)
	require.True(t, ok)
	assert.Equal(t, 0.0, f)
	assert.InDelta(t, 1.0, p, 1e-9)

	// Degenerate degrees of freedom.
	_, _, ok = FTest(10, 5, 1, 0)
	assert.False(t, ok)
}
