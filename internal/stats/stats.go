// Package stats holds the statistical primitives shared by the correlation
// and causality engines: Pearson correlation with exact small-sample
// p-values, and the regression machinery behind the Granger-style F-test.
package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// Pearson computes the correlation coefficient between paired samples.
// ok is false for degenerate input: mismatched or short slices, or a
// zero-variance series, where r is undefined and must be skipped rather
// than fabricated.
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) || len(x) < 3 {
		return 0, false
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	denom := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denom == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denom, true
}

// PearsonP returns the two-tailed p-value for an observed correlation r
// over n samples, from t = r·√((n−2)/(1−r²)) with n−2 degrees of freedom.
func PearsonP(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	df := float64(n - 2)
	denom := 1 - r*r
	if denom <= 0 {
		return 0 // |r| = 1, perfectly determined
	}
	t := r * math.Sqrt(df/denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// OLSRSS fits y = b0 + b·x by least squares and returns the residual sum
// of squares. ok is false when the system is underdetermined or the design
// matrix is rank deficient.
func OLSRSS(x [][]float64, y []float64) (rss float64, ok bool) {
	n := len(y)
	if n == 0 || len(x) != n {
		return 0, false
	}
	k := len(x[0]) + 1 // intercept
	if n <= k {
		return 0, false
	}

	a := mat.NewDense(n, k, nil)
	for i, row := range x {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil {
		return 0, false
	}

	var fitted mat.VecDense
	fitted.MulVec(a, &beta)
	for i := 0; i < n; i++ {
		d := y[i] - fitted.AtVec(i)
		rss += d * d
	}
	return rss, true
}

// FTest derives the F statistic and p-value for the residual-sum-of-squares
// reduction from adding q regressors, with dfU residual degrees of freedom
// in the unrestricted model. ok is false when the statistic is undefined.
func FTest(rssRestricted, rssUnrestricted float64, q, dfU int) (f, p float64, ok bool) {
	if q <= 0 || dfU <= 0 || rssUnrestricted <= 0 {
		return 0, 1, false
	}
	f = ((rssRestricted - rssUnrestricted) / float64(q)) / (rssUnrestricted / float64(dfU))
	if f < 0 {
		f = 0
	}
	dist := distuv.F{D1: float64(q), D2: float64(dfU)}
	return f, dist.Survival(f), true
}
