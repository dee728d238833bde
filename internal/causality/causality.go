// Package causality runs the Granger-style temporal-precedence search: for
// each candidate input and lag, it asks whether the input's lagged history
// improves prediction of the efficiency series beyond the series' own
// history. One generic search, two configurations: the acute readiness loop
// and the chronic fitness loop.
package causality

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"trainsight/internal/correlation"
	"trainsight/internal/stats"
	"trainsight/internal/timeseries"
)

// Loop identifies which search pass produced an indicator.
type Loop string

const (
	LoopReadiness Loop = "readiness"
	LoopFitness   Loop = "fitness"
)

// Confidence grades an optimal-lag finding. The tiers are a closed set;
// every consumer switches over all of them explicitly.
type Confidence int

const (
	ConfidenceInsufficient Confidence = iota
	ConfidenceSuggestive
	ConfidenceModerate
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceModerate:
		return "moderate"
	case ConfidenceSuggestive:
		return "suggestive"
	case ConfidenceInsufficient:
		return "insufficient"
	}
	return "unknown"
}

// maxARGapDays bounds how stale the previous efficiency observation may be
// when standing in for "yesterday" on an irregularly sampled series.
const maxARGapDays = 7

// Config parameterizes one causality pass.
type Config struct {
	Loop       Loop
	Inputs     []string
	MinLag     int
	MaxLag     int
	LagStep    int // 1 for daily inputs, 7 for weekly-resolution inputs
	MinSamples int // aligned-sample floor per (input, lag)
	AROrder    int // own-history terms in both models
}

// ReadinessConfig is the acute pass: same-day-resolution inputs, short lags.
func ReadinessConfig() Config {
	return Config{
		Loop:       LoopReadiness,
		Inputs:     timeseries.AcuteFields(),
		MinLag:     0,
		MaxLag:     7,
		LagStep:    1,
		MinSamples: 5,
		AROrder:    1,
	}
}

// FitnessConfig is the chronic pass: weekly-resolution training-load
// inputs, lags scanned at weekly resolution.
func FitnessConfig() Config {
	return Config{
		Loop:       LoopFitness,
		Inputs:     timeseries.ChronicFields(),
		MinLag:     14,
		MaxLag:     42,
		LagStep:    7,
		MinSamples: 4,
		AROrder:    1,
	}
}

// Indicator is the causal finding for one input in one loop: always
// lag-labeled, never a pooled verdict. Fully replaced on recomputation.
type Indicator struct {
	Input      string                `json:"input"`
	Loop       Loop                  `json:"loop"`
	OptimalLag int                   `json:"optimal_lag_days"`
	PValue     float64               `json:"p_value"`
	FStat      float64               `json:"f_stat"`
	R          float64               `json:"r"`
	N          int                   `json:"n"`
	Direction  correlation.Direction `json:"direction"`
	Confidence Confidence            `json:"confidence"`
}

// Search runs one causality pass over the snapshot. An input with too few
// aligned samples at every candidate lag yields no indicator at all.
func Search(snap *timeseries.Snapshot, cfg Config) []Indicator {
	step := cfg.LagStep
	if step <= 0 {
		step = 1
	}

	inputs := append([]string(nil), cfg.Inputs...)
	sort.Strings(inputs)

	var indicators []Indicator
	for _, name := range inputs {
		series, ok := snap.Inputs[name]
		if !ok || len(series) == 0 {
			continue
		}

		best, found := searchInput(series, snap.Efficiency, cfg, step)
		if !found {
			continue
		}
		best.Input = name
		best.Loop = cfg.Loop
		best.Confidence = gradeConfidence(best.PValue, best.R)
		indicators = append(indicators, best)
	}

	log.Debug().Str("loop", string(cfg.Loop)).
		Int("indicators", len(indicators)).
		Msg("causality search complete")
	return indicators
}

// searchInput picks the candidate lag with the lowest F-test p-value,
// breaking exact ties toward the larger |r|. The scan order is fixed, so
// identical series always yield the identical optimal lag.
func searchInput(input, output timeseries.Series, cfg Config, step int) (Indicator, bool) {
	var best Indicator
	found := false

	for lag := cfg.MinLag; lag <= cfg.MaxLag; lag += step {
		f, p, n, ok := grangerAtLag(input, output, lag, cfg.AROrder, cfg.MinSamples)
		if !ok {
			continue
		}

		r, _, _, rOK := correlation.Correlate(input, output, lag)
		if !rOK {
			r = 0
		}

		cand := Indicator{OptimalLag: lag, PValue: p, FStat: f, R: r, N: n,
			Direction: directionOf(r)}
		if !found || cand.PValue < best.PValue ||
			(cand.PValue == best.PValue && math.Abs(cand.R) > math.Abs(best.R)) {
			best = cand
			found = true
		}
	}
	return best, found
}

// grangerAtLag fits the restricted model (efficiency on its own lagged
// history) and the unrestricted model (adding the input at the candidate
// lag) and converts the RSS reduction into an F-test p-value.
func grangerAtLag(input, output timeseries.Series, lag, arOrder, minSamples int) (f, p float64, n int, ok bool) {
	restricted, unrestricted, ys := alignModelRows(input, output, lag, arOrder)
	n = len(ys)
	if n < minSamples {
		return 0, 1, n, false
	}

	rssR, okR := stats.OLSRSS(restricted, ys)
	rssU, okU := stats.OLSRSS(unrestricted, ys)
	if !okR || !okU {
		return 0, 1, n, false
	}

	dfU := n - (arOrder + 2) // intercept + AR terms + input term
	f, p, ok = stats.FTest(rssR, rssU, 1, dfU)
	return f, p, n, ok
}

// alignModelRows builds the regression rows for one candidate lag. A row
// exists for each efficiency observation that has (a) the required number
// of prior efficiency observations, the nearest no more than maxARGapDays
// old, and (b) an input value exactly lag days earlier.
func alignModelRows(input, output timeseries.Series, lag, arOrder int) (restricted, unrestricted [][]float64, ys []float64) {
	idx := make(map[int64]float64, len(input))
	for _, p := range input {
		idx[p.Date.Unix()] = p.Value
	}

	for i := arOrder; i < len(output); i++ {
		gap := output[i].Date.Sub(output[i-1].Date).Hours() / 24
		if gap > maxARGapDays {
			continue
		}

		x, okX := idx[output[i].Date.AddDate(0, 0, -lag).Unix()]
		if !okX {
			continue
		}

		hist := make([]float64, arOrder)
		for j := 0; j < arOrder; j++ {
			hist[j] = output[i-1-j].Value
		}

		restricted = append(restricted, hist)
		unrestricted = append(unrestricted, append(append([]float64(nil), hist...), x))
		ys = append(ys, output[i].Value)
	}
	return restricted, unrestricted, ys
}

// gradeConfidence applies the tier boundaries. Both p cuts are strict:
// p = 0.01 grades moderate, p = 0.10 grades insufficient.
func gradeConfidence(p, r float64) Confidence {
	switch {
	case p < 0.01 && math.Abs(r) >= 0.4:
		return ConfidenceHigh
	case p < 0.05:
		return ConfidenceModerate
	case p < 0.10:
		return ConfidenceSuggestive
	default:
		return ConfidenceInsufficient
	}
}

func directionOf(r float64) correlation.Direction {
	if r < 0 {
		return correlation.DirectionNegative
	}
	return correlation.DirectionPositive
}
