// Package pattern computes trailing-context features for a ghost cohort
// and classifies which are prerequisites, common factors, or neither for
// the target effort. Classification only; ordering and presentation belong
// downstream.
package pattern

import (
	"sort"
	"time"

	"trainsight/internal/ghost"
	"trainsight/internal/stats"
	"trainsight/internal/store"
	"trainsight/internal/timeseries"
)

// Classification of one feature across the cohort.
type Classification int

const (
	ClassNone Classification = iota
	ClassCommonFactor
	ClassPrerequisite
)

func (c Classification) String() string {
	switch c {
	case ClassPrerequisite:
		return "prerequisite"
	case ClassCommonFactor:
		return "common_factor"
	case ClassNone:
		return "none"
	}
	return "unknown"
}

// Config holds the classification thresholds. Zero values take defaults.
type Config struct {
	CommonThreshold       float64 // default 0.6
	PrerequisiteThreshold float64 // default 0.8
	MaxHR                 float64 // for workout-type classification
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{CommonThreshold: 0.6, PrerequisiteThreshold: 0.8}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CommonThreshold == 0 {
		c.CommonThreshold = d.CommonThreshold
	}
	if c.PrerequisiteThreshold == 0 {
		c.PrerequisiteThreshold = d.PrerequisiteThreshold
	}
	return c
}

// Feature is one classified trailing-context fact.
type Feature struct {
	Name           string         `json:"feature_name"`
	FractionTrue   float64        `json:"fraction_true_in_cohort"`
	Classification Classification `json:"classification"`
	TargetHas      bool           `json:"target_has"`
	IsDeviation    bool           `json:"is_deviation_in_target"`
}

// featureContext is everything a feature predicate may look at: the day of
// the effort and the 28 days of context behind it.
type featureContext struct {
	day  time.Time
	snap *timeseries.Snapshot
	cfg  Config
}

type featureFn struct {
	name string
	// eval returns (value, defined). Undefined facts shrink the sample
	// rather than counting as false.
	eval func(fc featureContext) (bool, bool)
}

// trailingFeatures is the fixed feature catalog computed per effort.
var trailingFeatures = []featureFn{
	{"tapered_volume_prior_week", taperedVolume},
	{"hard_session_within_48h", hardSessionWithin48h},
	{"rest_day_prior", restDayPrior},
	{"above_median_sleep_prior_3d", aboveMedianInput(timeseries.FieldSleepHours, 3)},
	{"above_median_hrv_prior_3d", aboveMedianInput(timeseries.FieldHRVRMSSD, 3)},
	{"low_stress_prior_day", lowStressPriorDay},
	{"acwr_in_band", acwrInBand},
}

// Recognize computes the feature snapshot for every cohort member plus the
// target and classifies each feature by its cohort fraction-true. Features
// below the common-factor threshold stay unclassified and are never
// reported as deviations.
func Recognize(snap *timeseries.Snapshot, target store.Activity, cohort []ghost.CohortEntry, cfg Config) []Feature {
	cfg = cfg.withDefaults()

	var out []Feature
	for _, fn := range trailingFeatures {
		trueCount, defined := 0, 0
		for _, entry := range cohort {
			fc := featureContext{day: timeseries.Day(entry.Activity.StartTime), snap: snap, cfg: cfg}
			v, ok := fn.eval(fc)
			if !ok {
				continue
			}
			defined++
			if v {
				trueCount++
			}
		}
		if defined == 0 {
			continue
		}

		fraction := float64(trueCount) / float64(defined)
		class := classify(fraction, cfg)

		targetHas, targetDefined := fn.eval(featureContext{
			day: timeseries.Day(target.StartTime), snap: snap, cfg: cfg})

		out = append(out, Feature{
			Name:           fn.name,
			FractionTrue:   fraction,
			Classification: class,
			TargetHas:      targetHas && targetDefined,
			IsDeviation:    class != ClassNone && targetDefined && !targetHas,
		})
	}
	return out
}

// classify applies the thresholds: fraction >= 0.8 prerequisite,
// [0.6, 0.8) common factor, below unclassified.
func classify(fraction float64, cfg Config) Classification {
	switch {
	case fraction >= cfg.PrerequisiteThreshold:
		return ClassPrerequisite
	case fraction >= cfg.CommonThreshold:
		return ClassCommonFactor
	default:
		return ClassNone
	}
}

// taperedVolume: prior-week distance under 85% of the mean weekly distance
// of the three weeks before that.
func taperedVolume(fc featureContext) (bool, bool) {
	week := distanceBetween(fc.snap.Activities, fc.day.AddDate(0, 0, -7), fc.day)
	base := distanceBetween(fc.snap.Activities, fc.day.AddDate(0, 0, -28), fc.day.AddDate(0, 0, -7))
	if base == 0 {
		return false, false
	}
	baseWeekly := base / 3
	return week < 0.85*baseWeekly, true
}

// hardSessionWithin48h: any tempo or interval effort started in the two
// days before the effort.
func hardSessionWithin48h(fc featureContext) (bool, bool) {
	for _, a := range fc.snap.Activities {
		if a.StartTime.Before(fc.day.AddDate(0, 0, -2)) || !a.StartTime.Before(fc.day) {
			continue
		}
		switch ghost.ClassifyWorkout(a, fc.cfg.MaxHR) {
		case ghost.WorkoutTempo, ghost.WorkoutInterval:
			return true, true
		}
	}
	return false, true
}

// restDayPrior: no recorded effort the day before.
func restDayPrior(fc featureContext) (bool, bool) {
	prev := fc.day.AddDate(0, 0, -1)
	for _, a := range fc.snap.Activities {
		if timeseries.Day(a.StartTime).Equal(prev) {
			return false, true
		}
	}
	return true, true
}

// aboveMedianInput builds a predicate comparing the mean of an input over
// the prior n days against the window median of that input.
func aboveMedianInput(field string, days int) func(featureContext) (bool, bool) {
	return func(fc featureContext) (bool, bool) {
		series, ok := fc.snap.Inputs[field]
		if !ok || len(series) < 4 {
			return false, false
		}
		med, ok := median(series.Values())
		if !ok {
			return false, false
		}

		idx := make(map[time.Time]float64, len(series))
		for _, p := range series {
			idx[p.Date] = p.Value
		}
		var prior []float64
		for i := 1; i <= days; i++ {
			if v, found := idx[fc.day.AddDate(0, 0, -i)]; found {
				prior = append(prior, v)
			}
		}
		if len(prior) == 0 {
			return false, false
		}
		return stats.Mean(prior) > med, true
	}
}

// lowStressPriorDay: subjective stress at most 4 of 10 the day before.
func lowStressPriorDay(fc featureContext) (bool, bool) {
	series, ok := fc.snap.Inputs[timeseries.FieldStress]
	if !ok {
		return false, false
	}
	prev := fc.day.AddDate(0, 0, -1)
	for _, p := range series {
		if p.Date.Equal(prev) {
			return p.Value <= 4, true
		}
	}
	return false, false
}

// acwrInBand: acute:chronic workload ratio the day before in [0.8, 1.3].
func acwrInBand(fc featureContext) (bool, bool) {
	series, ok := fc.snap.Inputs[timeseries.FieldACWR]
	if !ok {
		return false, false
	}
	prev := fc.day.AddDate(0, 0, -1)
	for _, p := range series {
		if p.Date.Equal(prev) {
			return p.Value >= 0.8 && p.Value <= 1.3, true
		}
	}
	return false, false
}

func distanceBetween(activities []store.Activity, from, to time.Time) float64 {
	var sum float64
	for _, a := range activities {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			sum += a.Distance
		}
	}
	return sum
}

func median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	vals := append([]float64(nil), xs...)
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], true
	}
	return (vals[mid-1] + vals[mid]) / 2, true
}
