package cli

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"trainsight/internal/store"
	"trainsight/internal/timeseries"
)

// seedCmd loads a deterministic synthetic athlete so the analysis commands
// have something to chew on without a live collaborator feed. Sleep two
// days back nudges efficiency, so the readiness loop has a real signal to
// find.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a deterministic synthetic athlete for demo runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, closer, err := openAnalyzer()
		if err != nil {
			return err
		}
		defer closer()

		rng := rand.New(rand.NewSource(42))
		days := 120
		start := timeseries.Day(time.Now().UTC()).AddDate(0, 0, -days)

		sleep := make([]float64, days)
		activityID := int64(1)
		var nObs, nActs int

		for i := 0; i < days; i++ {
			day := start.AddDate(0, 0, i)
			dateKey := day.Format("2006-01-02")
			recordedAt := day.Add(8 * time.Hour)

			sleep[i] = 7.5 + rng.NormFloat64()*0.9
			obs := []store.DailyObservation{
				{AthleteID: flagAthlete, Date: dateKey, Field: timeseries.FieldSleepHours, Value: sleep[i], RecordedAt: recordedAt},
				{AthleteID: flagAthlete, Date: dateKey, Field: timeseries.FieldHRVRMSSD, Value: 65 + rng.NormFloat64()*8, RecordedAt: recordedAt},
				{AthleteID: flagAthlete, Date: dateKey, Field: timeseries.FieldRestingHR, Value: 48 + rng.NormFloat64()*3, RecordedAt: recordedAt},
				{AthleteID: flagAthlete, Date: dateKey, Field: timeseries.FieldStress, Value: float64(3 + rng.Intn(5)), RecordedAt: recordedAt},
			}
			for j := range obs {
				if err := analyzer.RecordObservation(&obs[j]); err != nil {
					return err
				}
				nObs++
			}

			// Roughly five runs a week.
			if rng.Float64() > 5.0/7.0 {
				continue
			}

			eff := 3.0 + rng.NormFloat64()*0.08
			if i >= 2 {
				eff -= 0.12 * (sleep[i-2] - 7.5) // more sleep two days back, better (lower) efficiency
			}
			hr := 148 + rng.NormFloat64()*6
			dec := 4 + rng.NormFloat64()*2
			act := store.Activity{
				ID:               activityID,
				AthleteID:        flagAthlete,
				StartTime:        day.Add(time.Duration(7+rng.Intn(3)) * time.Hour),
				MovingTime:       2200 + rng.Intn(800),
				Distance:         5500 + rng.Float64()*1500,
				ElevationGain:    40 + rng.Float64()*20,
				AverageHeartrate: &hr,
				Efficiency:       &eff,
				Decoupling:       &dec,
			}
			if err := analyzer.RecordActivity(&act); err != nil {
				return err
			}
			activityID++
			nActs++
		}

		fmt.Printf("Seeded athlete %d: %d observations, %d activities over %d days.\n",
			flagAthlete, nObs, nActs, days)
		return nil
	},
}
