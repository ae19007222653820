package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testActivity() Activity {
	var samples []Sample
	for i := 0; i < 600; i++ {
		cad, gct := 176.0, 238.0
		if i >= 300 {
			cad, gct = 170.0, 252.0
		}
		samples = append(samples, Sample{
			Offset:        float64(i),
			HeartRate:     floatPtr(150),
			Cadence:       floatPtr(cad),
			GCT:           floatPtr(gct),
			GCTBalance:    floatPtr(50.4),
			VerticalRatio: floatPtr(8.2),
		})
	}

	return Activity{
		Summary: Summary{
			Name:          "Tempo Tuesday",
			Sport:         "running",
			StartTime:     time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC),
			TotalDistance: 2300,
			TotalDuration: 600,
		},
		Samples: samples,
		Laps: []Lap{
			makeLap(1, 0, 1250, 320),
			makeLap(2, 320, 1050, 280),
		},
	}
}

func TestAnalyze_WithoutWorkout(t *testing.T) {
	report, err := Analyze(testActivity(), nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Compliance != nil {
		t.Errorf("Compliance = %+v, want nil without a workout", report.Compliance)
	}
	if !report.HasRunningDynamics {
		t.Error("HasRunningDynamics = false, want true")
	}
	if report.AerobicEfficiency != nil {
		t.Errorf("AerobicEfficiency = %+v, want nil without pace samples", report.AerobicEfficiency)
	}
	if report.Metrics.AvgCadence == nil || report.Metrics.AvgCadence.Value != 173 {
		t.Errorf("AvgCadence = %+v, want 173", report.Metrics.AvgCadence)
	}
	if len(report.Fatigue) == 0 {
		t.Fatal("expected fatigue comparisons")
	}
	if report.Fatigue[0].Metric != MetricCadence || report.Fatigue[0].Direction != DirectionDegraded {
		t.Errorf("cadence fatigue = %+v, want degraded", report.Fatigue[0])
	}
	if report.StrideEfficiency.N != 600 || report.StrideEfficiency.Slope >= 0 {
		t.Errorf("StrideEfficiency = %+v, want negative slope over 600 points", report.StrideEfficiency)
	}
	if report.StrideEfficiency.Assessment == "" {
		t.Error("StrideEfficiency.Assessment is empty")
	}
	if len(report.TimeSeries) != 600 || len(report.Laps) != 2 {
		t.Errorf("TimeSeries/Laps = %d/%d, want 600/2", len(report.TimeSeries), len(report.Laps))
	}
}

func TestAnalyze_WithWorkout(t *testing.T) {
	workout := &PlannedWorkout{
		Name:        "Tempo 10 min",
		Description: "Steady threshold effort",
		Steps: []PlannedStep{
			{Type: "interval", TargetDuration: 600, PaceTarget: &PaceTarget{Fast: 250, Slow: 270}},
		},
	}

	report, err := Analyze(testActivity(), workout, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Compliance == nil {
		t.Fatal("Compliance is nil")
	}

	c := report.Compliance
	if c.WorkoutName != "Tempo 10 min" || c.WorkoutDescription != "Steady threshold effort" {
		t.Errorf("workout identity = %q/%q", c.WorkoutName, c.WorkoutDescription)
	}
	if c.CompliancePercent != 100 {
		t.Errorf("CompliancePercent = %d, want 100", c.CompliancePercent)
	}
	if diff := cmp.Diff([]int{1, 2}, c.StepBreakdown[0].LapsUsed); diff != "" {
		t.Errorf("LapsUsed mismatch (-want +got):\n%s", diff)
	}
	if c.DistanceStatus != DistanceUnknown {
		t.Errorf("DistanceStatus = %q, want unknown for a duration-only plan", c.DistanceStatus)
	}
}

func TestAnalyze_UnorderedLaps(t *testing.T) {
	activity := testActivity()
	activity.Laps[0], activity.Laps[1] = activity.Laps[1], activity.Laps[0]

	_, err := Analyze(activity, nil, DefaultOptions())
	if !errors.Is(err, ErrLapsNotOrdered) {
		t.Errorf("error = %v, want ErrLapsNotOrdered", err)
	}
}

func TestAnalyze_EmptyActivity(t *testing.T) {
	report, err := Analyze(Activity{}, nil, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.TimeSeries == nil || report.Laps == nil || report.Fatigue == nil {
		t.Error("empty activity should produce empty, non-nil slices")
	}
	if report.HasRunningDynamics {
		t.Error("HasRunningDynamics = true for empty activity")
	}
}
