package analysis

import "math"

// DistanceStatus compares actual against planned workout distance.
type DistanceStatus string

const (
	DistanceHit     DistanceStatus = "hit"
	DistanceShort   DistanceStatus = "short"
	DistanceLong    DistanceStatus = "long"
	DistanceUnknown DistanceStatus = ""
)

// Distance tolerance around the planned total.
const (
	distanceShortRatio = 0.95
	distanceLongRatio  = 1.05
)

// WorkoutCompliance rolls up step outcomes for one activity.
type WorkoutCompliance struct {
	WorkoutName        string           `json:"workoutName,omitempty"`
	WorkoutDescription string           `json:"workoutDescription,omitempty"`
	CompliancePercent  int              `json:"compliancePercent"`
	StepsHit           int              `json:"stepsHit"`
	StepsFast          int              `json:"stepsFast"`
	StepsPartial       int              `json:"stepsPartial"`
	StepsMissed        int              `json:"stepsMissed"`
	StepsNoTarget      int              `json:"stepsNoTarget"`
	TotalSteps         int              `json:"totalSteps"`
	DistanceStatus     DistanceStatus   `json:"distanceStatus,omitempty"`
	TargetDistance     float64          `json:"targetDistanceM,omitempty"`
	ActualDistance     float64          `json:"actualDistanceM"`
	StepBreakdown      []StepCompliance `json:"stepBreakdown"`
}

// Aggregate computes workout-level compliance. Hit and fast steps count fully,
// partial steps count half, and the total is divided by every step, including
// those without a pace target. An empty breakdown scores 0.
func Aggregate(steps []StepCompliance, plannedDistance, actualDistance float64) WorkoutCompliance {
	summary := WorkoutCompliance{
		TotalSteps:     len(steps),
		TargetDistance: positive(plannedDistance),
		ActualDistance: math.Round(positive(actualDistance)),
		StepBreakdown:  steps,
	}
	if summary.StepBreakdown == nil {
		summary.StepBreakdown = []StepCompliance{}
	}

	for _, s := range steps {
		switch s.Status {
		case StatusHit:
			summary.StepsHit++
		case StatusFast:
			summary.StepsFast++
		case StatusPartial:
			summary.StepsPartial++
		case StatusMissed:
			summary.StepsMissed++
		default:
			summary.StepsNoTarget++
		}
	}

	if len(steps) > 0 {
		score := float64(summary.StepsHit+summary.StepsFast) + 0.5*float64(summary.StepsPartial)
		summary.CompliancePercent = int(math.Round(score / float64(len(steps)) * 100))
	}

	summary.DistanceStatus = ClassifyDistance(plannedDistance, actualDistance)
	return summary
}

// ClassifyDistance reports whether actual distance is within 5% of planned.
func ClassifyDistance(planned, actual float64) DistanceStatus {
	if !(planned > 0) {
		return DistanceUnknown
	}
	actual = positive(actual)
	switch {
	case actual < planned*distanceShortRatio:
		return DistanceShort
	case actual > planned*distanceLongRatio:
		return DistanceLong
	default:
		return DistanceHit
	}
}

// PlannedDistance sums the distance targets of the steps, used when the
// workout carries no estimated total.
func PlannedDistance(steps []PlannedStep) float64 {
	var total float64
	for _, s := range FlattenSteps(steps) {
		total += positive(s.TargetDistance)
	}
	return total
}
