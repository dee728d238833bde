package ghost

import "trainsight/internal/store"

// Workout type classifications used by the cohort hard filter.
const (
	WorkoutRecovery = "recovery"
	WorkoutEasy     = "easy"
	WorkoutLong     = "long"
	WorkoutTempo    = "tempo"
	WorkoutInterval = "interval"
)

// ClassifyWorkout returns the stored workout type when present,
// otherwise classifies from duration, distance, and heart-rate fraction.
func ClassifyWorkout(a store.Activity, maxHR float64) string {
	if a.WorkoutType != nil && *a.WorkoutType != "" {
		return *a.WorkoutType
	}

	durationMin := float64(a.MovingTime) / 60

	var hrFrac float64
	if a.AverageHeartrate != nil && maxHR > 0 {
		hrFrac = *a.AverageHeartrate / maxHR
	}

	switch {
	case hrFrac >= 0.92 && durationMin < 45:
		return WorkoutInterval
	case hrFrac >= 0.85:
		return WorkoutTempo
	case a.Distance >= 15000 || durationMin >= 90:
		return WorkoutLong
	case hrFrac > 0 && hrFrac < 0.70:
		return WorkoutRecovery
	default:
		return WorkoutEasy
	}
}
