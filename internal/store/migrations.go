package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// OAuth grants per calendar platform, keyed by normalized API base URL
		`CREATE TABLE IF NOT EXISTS connect_tokens (
			platform TEXT PRIMARY KEY,
			account_id TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_type TEXT NOT NULL DEFAULT '',
			expires_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		)`,

		// Decoded activity summaries, keyed by FIT file stem.
		// file_mod_time invalidates the row when the file changes.
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			garmin_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_mod_time INTEGER NOT NULL,
			name TEXT NOT NULL,
			sport TEXT NOT NULL,
			start_time TEXT NOT NULL,
			distance REAL NOT NULL,
			duration REAL NOT NULL,
			avg_pace REAL NOT NULL,
			avg_heart_rate REAL,
			has_running_dynamics INTEGER NOT NULL,
			grade_cadence TEXT NOT NULL DEFAULT '',
			grade_gct TEXT NOT NULL DEFAULT '',
			grade_gct_balance TEXT NOT NULL DEFAULT '',
			grade_vertical_ratio TEXT NOT NULL DEFAULT '',
			analyzed INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_garmin_id ON activities(garmin_id)`,

		// Workout compliance computed on the detail view, shown in the list view
		`CREATE TABLE IF NOT EXISTS compliance (
			activity_id TEXT PRIMARY KEY,
			workout_name TEXT NOT NULL,
			compliance_percent INTEGER NOT NULL,
			distance_status TEXT NOT NULL DEFAULT '',
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		// Bookkeeping for FIT directory scans
		`CREATE TABLE IF NOT EXISTS scan_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
