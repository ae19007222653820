package store

import (
	"time"

	"runcoach/internal/analysis"
)

// ConnectToken is the OAuth grant for one workout calendar platform.
// Platform is the normalized API base URL; a zero ExpiresAt never expires.
type ConnectToken struct {
	Platform     string
	AccountID    string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Activity is the cached list-view summary of one FIT file
type Activity struct {
	ID                 string
	GarminID           string
	FilePath           string
	FileModTime        time.Time
	Name               string
	Sport              string
	StartTime          time.Time
	Distance           float64  // meters
	Duration           float64  // seconds
	AvgPace            float64  // sec/km
	AvgHeartRate       *float64 // nullable
	HasRunningDynamics bool
	Grades             analysis.GradeSummary
	Analyzed           bool
}

// Compliance is the cached workout compliance of one activity
type Compliance struct {
	ActivityID        string
	WorkoutName       string
	CompliancePercent int
	DistanceStatus    analysis.DistanceStatus
	ComputedAt        time.Time
}
