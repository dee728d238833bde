package timeseries

import (
	"time"

	"trainsight/internal/store"
)

// thresholdHRFraction of max HR above which an activity counts toward the
// threshold-intensity share.
const thresholdHRFraction = 0.88

// deriveChronic computes the weekly-resolution training-load inputs the
// fitness loop tests: trailing weekly volume, threshold-intensity share,
// long-run share, run-frequency consistency, and acute:chronic workload
// ratio. Each series starts once enough trailing history exists inside the
// window; ratios with an empty denominator are skipped, not zero-filled.
func deriveChronic(snap *Snapshot, maxHR float64) {
	if len(snap.Activities) == 0 {
		return
	}

	var volume, freqSeries, thresholdSh, longRunSh, acwr Series

	for d := snap.Window.Start.AddDate(0, 0, 6); d.Before(snap.Window.End); d = d.AddDate(0, 0, 1) {
		week := activitiesIn(snap.Activities, d.AddDate(0, 0, -6), d.AddDate(0, 0, 1))

		var distM, totalTime, thresholdTime, longest float64
		for _, act := range week {
			distM += act.Distance
			totalTime += float64(act.MovingTime)
			if act.Distance > longest {
				longest = act.Distance
			}
			if maxHR > 0 && act.AverageHeartrate != nil &&
				*act.AverageHeartrate >= thresholdHRFraction*maxHR {
				thresholdTime += float64(act.MovingTime)
			}
		}

		volume = append(volume, Point{Date: d, Value: distM / 1000})
		freqSeries = append(freqSeries, Point{Date: d, Value: float64(len(week))})

		if totalTime > 0 && maxHR > 0 {
			thresholdSh = append(thresholdSh, Point{Date: d, Value: thresholdTime / totalTime})
		}
		if distM > 0 {
			longRunSh = append(longRunSh, Point{Date: d, Value: longest / distM})
		}

		// ACWR needs 28 days of trailing history
		if !d.AddDate(0, 0, -27).Before(snap.Window.Start) {
			month := activitiesIn(snap.Activities, d.AddDate(0, 0, -27), d.AddDate(0, 0, 1))
			var monthDist float64
			for _, act := range month {
				monthDist += act.Distance
			}
			chronicWeekly := monthDist / 4
			if chronicWeekly > 0 {
				acwr = append(acwr, Point{Date: d, Value: distM / chronicWeekly})
			}
		}
	}

	snap.Inputs[FieldWeeklyVolume] = volume
	snap.Inputs[FieldRunFrequency] = freqSeries
	if len(thresholdSh) > 0 {
		snap.Inputs[FieldThresholdShare] = thresholdSh
	}
	if len(longRunSh) > 0 {
		snap.Inputs[FieldLongRunShare] = longRunSh
	}
	if len(acwr) > 0 {
		snap.Inputs[FieldACWR] = acwr
	}
}

// activitiesIn returns activities with start time in [from, to).
func activitiesIn(activities []store.Activity, from, to time.Time) []store.Activity {
	var out []store.Activity
	for _, a := range activities {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out
}
