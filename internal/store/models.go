package store

import "time"

// DailyObservation is a single collaborator-supplied measurement for one
// athlete on one date. Observations are stored long-form: several rows may
// exist for the same (athlete, date, field) and the aggregator reduces them
// with the per-field rule table.
type DailyObservation struct {
	AthleteID  int64     `db:"athlete_id"`
	Date       string    `db:"date"` // YYYY-MM-DD
	Field      string    `db:"field"`
	Value      float64   `db:"value"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Activity is one recorded effort with its precomputed output metrics.
// Efficiency (grade-adjusted pace divided by heart rate, lower is better)
// and decoupling arrive from the collaborator that derives them; this
// engine never computes them.
type Activity struct {
	ID               int64     `db:"id"`
	AthleteID        int64     `db:"athlete_id"`
	StartTime        time.Time `db:"start_time"`
	MovingTime       int       `db:"moving_time"` // seconds
	Distance         float64   `db:"distance"`    // meters
	ElevationGain    float64   `db:"elevation_gain"`
	AverageHeartrate *float64  `db:"average_heartrate"` // nullable
	Efficiency       *float64  `db:"efficiency"`        // nullable
	Decoupling       *float64  `db:"decoupling"`        // percent, nullable
	WorkoutType      *string   `db:"workout_type"`      // nullable; classified on read when absent
}
