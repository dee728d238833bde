package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertActivity inserts or updates an activity output record. The whole
// row is replaced on conflict; partial merges are never performed.
func (s *Store) UpsertActivity(a *Activity) error {
	_, err := s.db.Exec(`
		INSERT INTO activities (
			id, athlete_id, start_time, moving_time, distance, elevation_gain,
			average_heartrate, efficiency, decoupling, workout_type, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			start_time = excluded.start_time,
			moving_time = excluded.moving_time,
			distance = excluded.distance,
			elevation_gain = excluded.elevation_gain,
			average_heartrate = excluded.average_heartrate,
			efficiency = excluded.efficiency,
			decoupling = excluded.decoupling,
			workout_type = excluded.workout_type,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.StartTime.UTC().Format(time.RFC3339),
		a.MovingTime, a.Distance, a.ElevationGain,
		a.AverageHeartrate, a.Efficiency, a.Decoupling, a.WorkoutType,
	)
	if err != nil {
		return fmt.Errorf("upserting activity: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity by ID
func (s *Store) GetActivity(id int64) (*Activity, error) {
	row := s.db.QueryRow(`
		SELECT id, athlete_id, start_time, moving_time, distance, elevation_gain,
			average_heartrate, efficiency, decoupling, workout_type
		FROM activities
		WHERE id = ?
	`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// GetActivitiesInRange returns an athlete's activities with start time in
// [from, to), ordered by start time ascending.
func (s *Store) GetActivitiesInRange(athleteID int64, from, to time.Time) ([]Activity, error) {
	rows, err := s.db.Query(`
		SELECT id, athlete_id, start_time, moving_time, distance, elevation_gain,
			average_heartrate, efficiency, decoupling, workout_type
		FROM activities
		WHERE athlete_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time
	`, athleteID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivityRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*Activity, error) {
	var a Activity
	var startTime string

	err := row.Scan(
		&a.ID, &a.AthleteID, &startTime, &a.MovingTime, &a.Distance,
		&a.ElevationGain, &a.AverageHeartrate, &a.Efficiency,
		&a.Decoupling, &a.WorkoutType,
	)
	if err != nil {
		return nil, err
	}

	a.StartTime, err = time.Parse(time.RFC3339, startTime)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	return &a, nil
}

func scanActivityRows(rows *sql.Rows) (*Activity, error) {
	return scanActivity(rows)
}
