package store

import (
	"fmt"
	"time"
)

// InsertObservation appends one daily input observation. Rows are never
// merged in place: the aggregator reduces same-day duplicates on read, so a
// rewrite of a day's value is just a later-recorded row.
func (s *Store) InsertObservation(o *DailyObservation) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_observations (athlete_id, date, field, value, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, o.AthleteID, o.Date, o.Field, o.Value, o.RecordedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting observation: %w", err)
	}
	return nil
}

// GetObservations returns all observations for an athlete with date in
// [from, to], ordered by date then recorded_at so last-write reducers can
// take the final row per day.
func (s *Store) GetObservations(athleteID int64, from, to string) ([]DailyObservation, error) {
	rows, err := s.db.Query(`
		SELECT athlete_id, date, field, value, recorded_at
		FROM daily_observations
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date, recorded_at
	`, athleteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var out []DailyObservation
	for rows.Next() {
		var o DailyObservation
		var recordedAt string
		if err := rows.Scan(&o.AthleteID, &o.Date, &o.Field, &o.Value, &recordedAt); err != nil {
			return nil, err
		}
		o.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
