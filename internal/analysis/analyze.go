package analysis

// Options configures a full activity analysis.
type Options struct {
	Match          MatchOptions
	FatigueEpsilon float64
	FatigueMetrics []MetricKey
}

// DefaultOptions returns the tunables used when none are configured.
func DefaultOptions() Options {
	return Options{
		Match:          DefaultMatchOptions(),
		FatigueEpsilon: DefaultFatigueEpsilon,
		FatigueMetrics: DefaultFatigueMetrics,
	}
}

// StrideEfficiency is the cadence/GCT regression with its assessment.
type StrideEfficiency struct {
	Regression
	Assessment string `json:"assessment"`
}

// Report is the full analysis of one activity.
type Report struct {
	Summary            Summary             `json:"summary"`
	Metrics            SummaryMetrics      `json:"summaryMetrics"`
	Fatigue            []FatigueComparison `json:"fatigueComparison"`
	Compliance         *WorkoutCompliance  `json:"workoutCompliance,omitempty"`
	StrideEfficiency   StrideEfficiency    `json:"strideEfficiency"`
	AerobicEfficiency  *AerobicEfficiency  `json:"aerobicEfficiency,omitempty"`
	Coaching           CoachingInsights    `json:"coaching"`
	HasRunningDynamics bool                `json:"hasRunningDynamics"`
	TimeSeries         []Sample            `json:"timeSeries"`
	Laps               []Lap               `json:"laps"`
}

// Analyze grades an activity, compares its halves, characterises stride
// efficiency and, when a workout is given, scores compliance against it.
// Compliance is nil without a workout.
func Analyze(activity Activity, workout *PlannedWorkout, opts Options) (*Report, error) {
	if err := checkLapsOrdered(activity.Laps); err != nil {
		return nil, err
	}

	metrics := opts.FatigueMetrics
	if metrics == nil {
		metrics = DefaultFatigueMetrics
	}
	fatigue, err := FatigueComparator{Epsilon: opts.FatigueEpsilon}.Compare(activity.Samples, metrics)
	if err != nil {
		return nil, err
	}

	summary := SummarizeMetrics(activity.Samples)
	regression := Correlate(CadenceGCTPoints(activity.Samples))

	report := &Report{
		Summary: activity.Summary,
		Metrics: summary,
		Fatigue: fatigue,
		StrideEfficiency: StrideEfficiency{
			Regression: regression,
			Assessment: StrideEfficiencyAssessment(regression),
		},
		AerobicEfficiency:  ComputeAerobicEfficiency(activity.Samples),
		Coaching:           GenerateCoachingInsights(summary, fatigue),
		HasRunningDynamics: HasRunningDynamics(activity.Samples),
		TimeSeries:         activity.Samples,
		Laps:               activity.Laps,
	}
	if report.TimeSeries == nil {
		report.TimeSeries = []Sample{}
	}
	if report.Laps == nil {
		report.Laps = []Lap{}
	}

	if workout != nil {
		compliance, err := Compliance(activity, *workout, opts.Match)
		if err != nil {
			return nil, err
		}
		report.Compliance = &compliance
	}

	return report, nil
}

// Compliance matches an activity's laps against a workout and rolls up the result.
// Session totals from the activity feed the single-step fallback.
func Compliance(activity Activity, workout PlannedWorkout, opts MatchOptions) (WorkoutCompliance, error) {
	if opts == (MatchOptions{}) {
		opts = DefaultMatchOptions()
	}
	opts.SessionDistance = activity.Summary.TotalDistance
	opts.SessionDuration = activity.Summary.TotalDuration

	steps, err := Matcher{Options: opts}.Match(activity.Laps, workout.Steps)
	if err != nil {
		return WorkoutCompliance{}, err
	}

	planned := workout.EstimatedDistance
	if !(planned > 0) {
		planned = PlannedDistance(workout.Steps)
	}

	result := Aggregate(steps, planned, activity.Summary.TotalDistance)
	result.WorkoutName = workout.Name
	result.WorkoutDescription = workout.Description
	return result, nil
}
