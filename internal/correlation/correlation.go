// Package correlation exhaustively screens every (input, lag) pair for a
// statistically significant Pearson relationship with the efficiency
// series. It screens only; picking an optimal lag per input is the
// causality engine's job.
package correlation

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"trainsight/internal/stats"
	"trainsight/internal/timeseries"
)

// Direction of an input's relationship with efficiency.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// Strength labels |r|.
type Strength string

const (
	StrengthWeak     Strength = "weak"     // |r| < 0.3
	StrengthModerate Strength = "moderate" // 0.3 <= |r| < 0.7
	StrengthStrong   Strength = "strong"   // |r| >= 0.7
)

// Config controls the screening pass. Zero values take the documented
// defaults.
type Config struct {
	MinLag     int     // default 0
	MaxLag     int     // default 14
	MinSamples int     // default 10; pairs below this are discarded
	RThreshold float64 // default 0.3
	PThreshold float64 // default 0.05
}

// DefaultConfig returns the standard screening parameters.
func DefaultConfig() Config {
	return Config{MinLag: 0, MaxLag: 14, MinSamples: 10, RThreshold: 0.3, PThreshold: 0.05}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxLag == 0 {
		c.MaxLag = d.MaxLag
	}
	if c.MinSamples == 0 {
		c.MinSamples = d.MinSamples
	}
	if c.RThreshold == 0 {
		c.RThreshold = d.RThreshold
	}
	if c.PThreshold == 0 {
		c.PThreshold = d.PThreshold
	}
	return c
}

// Result is one significant (input, lag) pair.
type Result struct {
	Input     string    `json:"input"`
	LagDays   int       `json:"lag_days"`
	R         float64   `json:"r"`
	PValue    float64   `json:"p_value"`
	N         int       `json:"n"`
	Direction Direction `json:"direction"`
	Strength  Strength  `json:"strength"`
}

// StrengthFor labels an absolute correlation.
func StrengthFor(absR float64) Strength {
	switch {
	case absR >= 0.7:
		return StrengthStrong
	case absR >= 0.3:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// Correlate evaluates a single (input, lag) pair against the output
// series. ok is false when the aligned sample is degenerate.
func Correlate(input, output timeseries.Series, lag int) (r, p float64, n int, ok bool) {
	xs, ys := timeseries.Align(input, output, lag)
	r, ok = stats.Pearson(xs, ys)
	if !ok {
		return 0, 1, len(xs), false
	}
	return r, stats.PearsonP(r, len(xs)), len(xs), true
}

// Screen tests every acute input against daily efficiency across the lag
// range and retains each lag that independently clears the significance
// bar: n >= MinSamples, |r| >= RThreshold, p < PThreshold. Degenerate
// (zero-variance) alignments are skipped silently.
func Screen(snap *timeseries.Snapshot, cfg Config) []Result {
	cfg = cfg.withDefaults()

	inputs := make([]string, 0, len(snap.Inputs))
	for name := range snap.Inputs {
		inputs = append(inputs, name)
	}
	sort.Strings(inputs)

	var results []Result
	for _, name := range inputs {
		series := snap.Inputs[name]
		for lag := cfg.MinLag; lag <= cfg.MaxLag; lag++ {
			r, p, n, ok := Correlate(series, snap.Efficiency, lag)
			if !ok || n < cfg.MinSamples {
				continue
			}
			if math.Abs(r) < cfg.RThreshold || p >= cfg.PThreshold {
				continue
			}

			dir := DirectionPositive
			if r < 0 {
				dir = DirectionNegative
			}
			results = append(results, Result{
				Input:     name,
				LagDays:   lag,
				R:         r,
				PValue:    p,
				N:         n,
				Direction: dir,
				Strength:  StrengthFor(math.Abs(r)),
			})
		}
	}

	log.Debug().Int64("athlete", snap.AthleteID).
		Int("significant", len(results)).
		Msg("correlation screen complete")
	return results
}
