package analysis

import "time"

// Sample is one timestamped observation from the activity record stream.
// Optional sensor values are nil when the device did not report them.
type Sample struct {
	Offset              float64  `json:"timestamp"`                     // seconds from activity start
	HeartRate           *float64 `json:"heartRate,omitempty"`           // bpm
	Cadence             *float64 `json:"cadence,omitempty"`             // steps/min
	Pace                *float64 `json:"pace,omitempty"`                // sec/km
	GCT                 *float64 `json:"gct,omitempty"`                 // ms
	GCTBalance          *float64 `json:"gctBalance,omitempty"`          // % left, 50 = balanced
	VerticalRatio       *float64 `json:"verticalRatio,omitempty"`       // %
	VerticalOscillation *float64 `json:"verticalOscillation,omitempty"` // cm
	StrideLength        *float64 `json:"strideLength,omitempty"`        // m
	Power               *float64 `json:"power,omitempty"`               // W
}

// Lap is a contiguous span of the activity delimited by lap markers.
type Lap struct {
	Number           int      `json:"lapNumber"`
	StartOffset      float64  `json:"startOffset"` // seconds from activity start
	Distance         float64  `json:"distance"`    // meters
	Duration         float64  `json:"duration"`    // seconds
	AvgPace          float64  `json:"avgPace"`     // sec/km, 0 when distance is unknown
	AvgHeartRate     *float64 `json:"avgHeartRate,omitempty"`
	AvgCadence       *float64 `json:"avgCadence,omitempty"`
	AvgGCT           *float64 `json:"avgGct,omitempty"`
	AvgGCTBalance    *float64 `json:"avgGctBalance,omitempty"`
	AvgVerticalRatio *float64 `json:"avgVerticalRatio,omitempty"`
}

// PaceTarget is a prescribed pace range in sec/km. Fast is the lower number.
type PaceTarget struct {
	Fast float64 `json:"fastSecPerKm"`
	Slow float64 `json:"slowSecPerKm"`
}

// PlannedStep is one step of a scheduled workout.
type PlannedStep struct {
	Type           string        `json:"type"`
	TargetDistance float64       `json:"targetDistanceM,omitempty"`   // meters
	TargetDuration float64       `json:"targetDurationSec,omitempty"` // seconds
	PaceTarget     *PaceTarget   `json:"targetPaceRange,omitempty"`
	Repetitions    int           `json:"repetitions,omitempty"`
	Steps          []PlannedStep `json:"steps,omitempty"`
}

// PlannedWorkout is a workout scheduled on the coaching platform.
type PlannedWorkout struct {
	ID                int64         `json:"id,omitempty"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	ScheduledDate     time.Time     `json:"scheduledDate"`
	EstimatedDistance float64       `json:"estimatedDistanceM,omitempty"`
	Steps             []PlannedStep `json:"steps"`
}

// Summary holds session-level totals for an activity.
type Summary struct {
	Name          string    `json:"activityName"`
	Sport         string    `json:"activityType"`
	StartTime     time.Time `json:"startTime"`
	TotalDistance float64   `json:"totalDistance"` // meters
	TotalDuration float64   `json:"totalDuration"` // seconds
	AvgPace       float64   `json:"avgPace"`       // sec/km
	AvgHeartRate  *float64  `json:"avgHeartRate,omitempty"`
}

// Activity is a decoded activity ready for analysis.
type Activity struct {
	Summary Summary  `json:"summary"`
	Samples []Sample `json:"timeSeries"`
	Laps    []Lap    `json:"laps"`
}
