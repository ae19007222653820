package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"runcoach/internal/analysis"
)

// ErrComplianceNotFound is returned when no compliance is cached for an activity
var ErrComplianceNotFound = errors.New("compliance not found")

// SaveCompliance stores the compliance computed for an activity, replacing any
// earlier result. The activity must already be cached.
func (db *DB) SaveCompliance(c *Compliance) error {
	_, err := db.Exec(`
		INSERT INTO compliance (activity_id, workout_name, compliance_percent, distance_status, computed_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			workout_name = excluded.workout_name,
			compliance_percent = excluded.compliance_percent,
			distance_status = excluded.distance_status,
			computed_at = CURRENT_TIMESTAMP
	`, c.ActivityID, c.WorkoutName, c.CompliancePercent, string(c.DistanceStatus))
	return err
}

// GetCompliance retrieves the cached compliance for an activity
func (db *DB) GetCompliance(activityID string) (*Compliance, error) {
	row := db.QueryRow(`
		SELECT activity_id, workout_name, compliance_percent, distance_status, computed_at
		FROM compliance
		WHERE activity_id = ?
	`, activityID)

	c, err := scanCompliance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComplianceNotFound
	}
	return c, err
}

// GetComplianceByActivity returns cached compliance for the given activities,
// keyed by activity ID. Activities without a cached result are absent.
func (db *DB) GetComplianceByActivity(ids []string) (map[string]Compliance, error) {
	result := make(map[string]Compliance, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query(`
		SELECT activity_id, workout_name, compliance_percent, distance_status, computed_at
		FROM compliance
		WHERE activity_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, err
		}
		result[c.ActivityID] = *c
	}
	return result, rows.Err()
}

func scanCompliance(s scanner) (*Compliance, error) {
	var c Compliance
	var status string
	var computedAt sql.NullString
	if err := s.Scan(&c.ActivityID, &c.WorkoutName, &c.CompliancePercent, &status, &computedAt); err != nil {
		return nil, err
	}
	c.DistanceStatus = analysis.DistanceStatus(status)
	if computedAt.Valid {
		// CURRENT_TIMESTAMP format
		if t, err := time.Parse(time.DateTime, computedAt.String); err == nil {
			c.ComputedAt = t
		}
	}
	return &c, nil
}
