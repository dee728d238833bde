package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Daily input observations, long-form. Multiple rows per
		// (athlete, date, field) are allowed; the aggregator reduces
		// them with the per-field rule table.
		`CREATE TABLE IF NOT EXISTS daily_observations (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			field TEXT NOT NULL,
			value REAL NOT NULL,
			recorded_at TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_observations_athlete_date
			ON daily_observations(athlete_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_field
			ON daily_observations(field)`,

		// Activity outputs (precomputed by the metrics collaborator)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			moving_time INTEGER NOT NULL,
			distance REAL NOT NULL,
			elevation_gain REAL NOT NULL DEFAULT 0,
			average_heartrate REAL,
			efficiency REAL,
			decoupling REAL,
			workout_type TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_athlete_start
			ON activities(athlete_id, start_time)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
