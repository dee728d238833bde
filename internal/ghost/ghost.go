// Package ghost builds a personalized baseline for one target activity by
// ranking the athlete's own comparable historical efforts: hard filters
// first, then a fixed weighted multi-factor similarity score. No
// population averages anywhere.
package ghost

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"trainsight/internal/store"
)

// Status distinguishes a usable baseline from one the history cannot
// support. Callers must be able to tell "nothing found" apart from
// "nothing asked".
type Status int

const (
	StatusOK Status = iota
	StatusNoComparableHistory
)

// Weights is the per-dimension contribution to the similarity score.
// The defaults sum to exactly 1.0.
type Weights struct {
	Duration    float64 `yaml:"duration"`
	Intensity   float64 `yaml:"intensity"`
	WorkoutType float64 `yaml:"workout_type"`
	Conditions  float64 `yaml:"conditions"`
	Elevation   float64 `yaml:"elevation"`
	Distance    float64 `yaml:"distance"`
}

// DefaultWeights returns the standard similarity weighting.
func DefaultWeights() Weights {
	return Weights{
		Duration:    0.20,
		Intensity:   0.25,
		WorkoutType: 0.20,
		Conditions:  0.15,
		Elevation:   0.10,
		Distance:    0.10,
	}
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	return w.Duration + w.Intensity + w.WorkoutType + w.Conditions + w.Elevation + w.Distance
}

// Config controls cohort selection. Zero values take the defaults.
type Config struct {
	Tolerance  float64 // hard-filter band, default 0.15
	CohortSize int     // target N, default 15
	MinCohort  int     // below this the baseline is refused, default 3
	Weights    Weights
	MaxHR      float64 // for workout-type classification fallback
}

// DefaultConfig returns the standard comparator parameters.
func DefaultConfig() Config {
	return Config{Tolerance: 0.15, CohortSize: 15, MinCohort: 3, Weights: DefaultWeights()}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Tolerance == 0 {
		c.Tolerance = d.Tolerance
	}
	if c.CohortSize == 0 {
		c.CohortSize = d.CohortSize
	}
	if c.MinCohort == 0 {
		c.MinCohort = d.MinCohort
	}
	if c.Weights.Sum() == 0 {
		c.Weights = d.Weights
	}
	return c
}

// SubScores are the per-dimension similarity components, each in [0,1].
type SubScores struct {
	Duration    float64 `json:"duration"`
	Intensity   float64 `json:"intensity"`
	WorkoutType float64 `json:"workout_type"`
	Conditions  float64 `json:"conditions"`
	Elevation   float64 `json:"elevation"`
	Distance    float64 `json:"distance"`
}

// CohortEntry is one ranked comparable effort.
type CohortEntry struct {
	Activity   store.Activity `json:"-"`
	ActivityID int64          `json:"activity_id"`
	Similarity float64        `json:"similarity"`
	Sub        SubScores      `json:"sub_scores"`
}

// Baseline is the ghost cohort's summary plus the target's relative score.
type Baseline struct {
	Status            Status        `json:"-"`
	TargetID          int64         `json:"target_id"`
	Cohort            []CohortEntry `json:"cohort"`
	CohortBelowTarget bool          `json:"cohort_below_target"` // survivors < target N
	MeanEfficiency    float64       `json:"mean_efficiency"`
	MeanPaceSecPerKm  float64       `json:"mean_pace_sec_per_km"`
	MeanHeartrate     float64       `json:"mean_heartrate"`
	TargetScore       float64       `json:"target_score"` // >100: target beat its own history
}

// Compare ranks the athlete's history against the target activity and
// builds the ghost baseline. Fewer surviving candidates than MinCohort
// yields StatusNoComparableHistory instead of a forced baseline.
func Compare(target store.Activity, history []store.Activity, cfg Config) Baseline {
	cfg = cfg.withDefaults()
	targetType := ClassifyWorkout(target, cfg.MaxHR)

	var cohort []CohortEntry
	for _, cand := range history {
		if cand.ID == target.ID {
			continue
		}
		if !passesFilters(target, cand, targetType, cfg) {
			continue
		}
		sub := scoreCandidate(target, cand, cfg)
		cohort = append(cohort, CohortEntry{
			Activity:   cand,
			ActivityID: cand.ID,
			Similarity: weightedSum(sub, cfg.Weights),
			Sub:        sub,
		})
	}

	// Rank by similarity, then recency, then ID for determinism.
	sort.Slice(cohort, func(i, j int) bool {
		if cohort[i].Similarity != cohort[j].Similarity {
			return cohort[i].Similarity > cohort[j].Similarity
		}
		if !cohort[i].Activity.StartTime.Equal(cohort[j].Activity.StartTime) {
			return cohort[i].Activity.StartTime.After(cohort[j].Activity.StartTime)
		}
		return cohort[i].ActivityID < cohort[j].ActivityID
	})
	if len(cohort) > cfg.CohortSize {
		cohort = cohort[:cfg.CohortSize]
	}

	if len(cohort) < cfg.MinCohort {
		log.Debug().Int64("target", target.ID).Int("survivors", len(cohort)).
			Msg("insufficient comparable history")
		return Baseline{Status: StatusNoComparableHistory, TargetID: target.ID, Cohort: cohort}
	}

	b := buildBaseline(target, cohort)
	b.CohortBelowTarget = len(cohort) < cfg.CohortSize
	return b
}

// passesFilters applies the hard gates: duration, distance, and elevation
// gain each within the tolerance of the target, plus a workout-type match.
// No weighted score can rescue a candidate that fails these.
func passesFilters(target, cand store.Activity, targetType string, cfg Config) bool {
	if !withinTolerance(float64(cand.MovingTime), float64(target.MovingTime), cfg.Tolerance) {
		return false
	}
	if !withinTolerance(cand.Distance, target.Distance, cfg.Tolerance) {
		return false
	}
	if !withinTolerance(cand.ElevationGain, target.ElevationGain, cfg.Tolerance) {
		return false
	}
	return ClassifyWorkout(cand, cfg.MaxHR) == targetType
}

func withinTolerance(candidate, target, tol float64) bool {
	return math.Abs(candidate-target) <= tol*target
}

// scoreCandidate computes the per-dimension sub-scores, each normalized to
// [0,1] within its own tolerance.
func scoreCandidate(target, cand store.Activity, cfg Config) SubScores {
	sub := SubScores{
		Duration:    proximity(float64(cand.MovingTime), float64(target.MovingTime), cfg.Tolerance),
		Distance:    proximity(cand.Distance, target.Distance, cfg.Tolerance),
		Elevation:   proximity(cand.ElevationGain, target.ElevationGain, cfg.Tolerance),
		WorkoutType: 1, // hard filter already required a match
		Conditions:  conditionsScore(target, cand),
	}

	if target.AverageHeartrate != nil && cand.AverageHeartrate != nil {
		sub.Intensity = proximity(*cand.AverageHeartrate, *target.AverageHeartrate, cfg.Tolerance)
	} else {
		sub.Intensity = 0.5 // unknown intensity scores neutral
	}
	return sub
}

// proximity maps a delta inside the tolerance band onto [0,1]: identical
// values score 1, values at the edge of the band score 0.
func proximity(candidate, target, tol float64) float64 {
	if target == 0 {
		if candidate == 0 {
			return 1
		}
		return 0
	}
	score := 1 - math.Abs(candidate-target)/(tol*target)
	return math.Max(0, math.Min(1, score))
}

// conditionsScore is a proxy for comparable conditions built from what the
// output record carries: time of day and season.
func conditionsScore(target, cand store.Activity) float64 {
	hourDelta := math.Abs(float64(target.StartTime.Hour() - cand.StartTime.Hour()))
	if hourDelta > 12 {
		hourDelta = 24 - hourDelta
	}
	monthDelta := math.Abs(float64(int(target.StartTime.Month()) - int(cand.StartTime.Month())))
	if monthDelta > 6 {
		monthDelta = 12 - monthDelta
	}
	return ((1 - hourDelta/12) + (1 - monthDelta/6)) / 2
}

func weightedSum(sub SubScores, w Weights) float64 {
	return sub.Duration*w.Duration +
		sub.Intensity*w.Intensity +
		sub.WorkoutType*w.WorkoutType +
		sub.Conditions*w.Conditions +
		sub.Elevation*w.Elevation +
		sub.Distance*w.Distance
}

// buildBaseline averages the cohort and scores the target against it.
// Efficiency is lower-is-better, so the relative score is the cohort mean
// over the target: above 100 means the target outperformed its own
// comparable history.
func buildBaseline(target store.Activity, cohort []CohortEntry) Baseline {
	b := Baseline{Status: StatusOK, TargetID: target.ID, Cohort: cohort}

	var effSum, paceSum, hrSum float64
	var effN, paceN, hrN int
	for _, e := range cohort {
		a := e.Activity
		if a.Efficiency != nil {
			effSum += *a.Efficiency
			effN++
		}
		if a.Distance > 0 {
			paceSum += float64(a.MovingTime) / (a.Distance / 1000)
			paceN++
		}
		if a.AverageHeartrate != nil {
			hrSum += *a.AverageHeartrate
			hrN++
		}
	}

	if effN > 0 {
		b.MeanEfficiency = effSum / float64(effN)
	}
	if paceN > 0 {
		b.MeanPaceSecPerKm = paceSum / float64(paceN)
	}
	if hrN > 0 {
		b.MeanHeartrate = hrSum / float64(hrN)
	}

	if target.Efficiency != nil && *target.Efficiency > 0 && b.MeanEfficiency > 0 {
		b.TargetScore = 100 * b.MeanEfficiency / *target.Efficiency
	}
	return b
}
