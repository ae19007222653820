package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"runcoach/internal/analysis"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

const activityColumns = `id, garmin_id, file_path, file_mod_time, name, sport, start_time,
	distance, duration, avg_pace, avg_heart_rate, has_running_dynamics,
	grade_cadence, grade_gct, grade_gct_balance, grade_vertical_ratio, analyzed`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(a *Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (`+activityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			garmin_id = excluded.garmin_id,
			file_path = excluded.file_path,
			file_mod_time = excluded.file_mod_time,
			name = excluded.name,
			sport = excluded.sport,
			start_time = excluded.start_time,
			distance = excluded.distance,
			duration = excluded.duration,
			avg_pace = excluded.avg_pace,
			avg_heart_rate = excluded.avg_heart_rate,
			has_running_dynamics = excluded.has_running_dynamics,
			grade_cadence = excluded.grade_cadence,
			grade_gct = excluded.grade_gct,
			grade_gct_balance = excluded.grade_gct_balance,
			grade_vertical_ratio = excluded.grade_vertical_ratio,
			analyzed = excluded.analyzed,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.GarminID, a.FilePath, a.FileModTime.UnixNano(), a.Name, a.Sport,
		a.StartTime.UTC().Format(time.RFC3339), a.Distance, a.Duration, a.AvgPace,
		a.AvgHeartRate, boolToInt(a.HasRunningDynamics),
		string(a.Grades.Cadence), string(a.Grades.GCT), string(a.Grades.GCTBalance),
		string(a.Grades.VerticalRatio), boolToInt(a.Analyzed),
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

// GetFreshActivity returns the cached activity only when it was stored for a
// file with the same modification time. A stale or missing row yields
// ErrActivityNotFound.
func (db *DB) GetFreshActivity(id string, modTime time.Time) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ? AND file_mod_time = ?`,
		id, modTime.UnixNano())
	return scanActivity(row)
}

// ListActivities returns activities ordered by start time descending
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT `+activityColumns+`
		FROM activities
		ORDER BY start_time DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivityRows(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// DeleteActivity removes an activity and, through the foreign key, its compliance
func (db *DB) DeleteActivity(id string) error {
	result, err := db.Exec(`DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// CountActivities returns the number of cached activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row *sql.Row) (*Activity, error) {
	a, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

func scanActivityRows(rows *sql.Rows) (*Activity, error) {
	return scanInto(rows)
}

func scanInto(s scanner) (*Activity, error) {
	var a Activity
	var modTime int64
	var startTime string
	var avgHR sql.NullFloat64
	var hasDynamics, analyzed int
	var gCadence, gGCT, gBalance, gRatio string

	err := s.Scan(
		&a.ID, &a.GarminID, &a.FilePath, &modTime, &a.Name, &a.Sport, &startTime,
		&a.Distance, &a.Duration, &a.AvgPace, &avgHR, &hasDynamics,
		&gCadence, &gGCT, &gBalance, &gRatio, &analyzed,
	)
	if err != nil {
		return nil, err
	}

	a.FileModTime = time.Unix(0, modTime)
	a.StartTime, err = time.Parse(time.RFC3339, startTime)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time %q: %w", startTime, err)
	}
	if avgHR.Valid {
		a.AvgHeartRate = &avgHR.Float64
	}
	a.HasRunningDynamics = hasDynamics == 1
	a.Analyzed = analyzed == 1
	a.Grades = analysis.GradeSummary{
		Cadence:       analysis.Grade(gCadence),
		GCT:           analysis.Grade(gGCT),
		GCTBalance:    analysis.Grade(gBalance),
		VerticalRatio: analysis.Grade(gRatio),
	}

	return &a, nil
}
