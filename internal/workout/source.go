// Package workout finds the planned workout an activity was meant to execute.
package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runcoach/internal/analysis"
)

// DateLayout is the calendar day format used by workout documents and the
// connect calendar endpoint.
const DateLayout = "2006-01-02"

// ErrInvalidWorkout is returned for workout documents that cannot be used for matching.
var ErrInvalidWorkout = errors.New("invalid workout")

// Source lists the workouts scheduled on a calendar day.
type Source interface {
	ScheduledWorkouts(ctx context.Context, day time.Time) ([]analysis.PlannedWorkout, error)
}

// Document is the JSON form of a scheduled workout. Dates are calendar days
// (YYYY-MM-DD); RFC 3339 timestamps are accepted too.
type Document struct {
	ID                int64                  `json:"id,omitempty"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	ScheduledDate     string                 `json:"scheduledDate"`
	EstimatedDistance float64                `json:"estimatedDistanceM,omitempty"`
	Steps             []analysis.PlannedStep `json:"steps"`
}

// Workout converts the document into a planned workout.
func (d Document) Workout() (analysis.PlannedWorkout, error) {
	if d.Name == "" {
		return analysis.PlannedWorkout{}, fmt.Errorf("%w: missing name", ErrInvalidWorkout)
	}
	if len(d.Steps) == 0 {
		return analysis.PlannedWorkout{}, fmt.Errorf("%w: %q has no steps", ErrInvalidWorkout, d.Name)
	}

	day, err := ParseDay(d.ScheduledDate)
	if err != nil {
		return analysis.PlannedWorkout{}, fmt.Errorf("%w: %q: %v", ErrInvalidWorkout, d.Name, err)
	}

	return analysis.PlannedWorkout{
		ID:                d.ID,
		Name:              d.Name,
		Description:       d.Description,
		ScheduledDate:     day,
		EstimatedDistance: d.EstimatedDistance,
		Steps:             d.Steps,
	}, nil
}

// ParseDay parses a calendar day or an RFC 3339 timestamp.
// An empty string yields the zero time.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing scheduled date %q: %w", s, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar date.
// Each is read in its own location.
func SameDay(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}
