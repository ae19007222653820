package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"runcoach/internal/analysis"
	"runcoach/internal/config"
	"runcoach/internal/service"
)

var testNow = time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)

func newTestRenderer(display config.DisplayConfig) *Renderer {
	r := NewRenderer(NewUnits(display))
	r.now = func() time.Time { return testNow }
	return r
}

func TestUnits(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"km distance", km.FormatDistance(10000), "10.00 km"},
		{"mi distance", mi.FormatDistance(1609.34), "1.00 mi"},
		{"km pace", km.FormatPace(300), "5:00/km"},
		{"mi pace", mi.FormatPace(300), "8:02/mi"},
		{"no pace", km.FormatPace(0), "-"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestActivityList(t *testing.T) {
	pct := 83
	activities := []service.ActivitySummary{
		{
			ID:                "2026-03-10_Tempo_Run_200",
			Name:              "Tempo Run",
			StartTime:         testNow.Add(-26 * time.Hour),
			DistanceKm:        10,
			DurationSeconds:   3000,
			Analyzed:          true,
			Grades:            &analysis.GradeSummary{Cadence: analysis.GradeB, GCT: analysis.GradeA},
			WorkoutName:       "Tempo Run",
			CompliancePercent: &pct,
		},
		{ID: "broken_400", Name: "Run 400"},
	}

	var buf bytes.Buffer
	if err := newTestRenderer(config.DisplayConfig{}).ActivityList(&buf, activities); err != nil {
		t.Fatalf("ActivityList() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Activities (2)", "Tempo Run", "10.00 km", "50:00", "1 day ago", "83%", "not analyzed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestActivityList_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := newTestRenderer(config.DisplayConfig{}).ActivityList(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No activities found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestActivity(t *testing.T) {
	hr := 152.0
	samples := make([]analysis.Sample, 120)
	for i := range samples {
		cad := 170 + float64(i%10)
		gct := 250 - float64(i%10)
		samples[i] = analysis.Sample{Offset: float64(i), Cadence: &cad, GCT: &gct, HeartRate: &hr}
	}

	detail := &service.ActivityDetail{
		ID: "2026-03-10_Tempo_Run_200",
		Report: &analysis.Report{
			Summary: analysis.Summary{
				Name:          "Tempo Run",
				StartTime:     time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
				TotalDistance: 10000,
				TotalDuration: 3000,
				AvgPace:       300,
				AvgHeartRate:  &hr,
			},
			Metrics: analysis.SummaryMetrics{
				AvgCadence: &analysis.GradeValue{Value: 174.5, Grade: analysis.GradeB},
				AvgGCT:     &analysis.GradeValue{Value: 245.5, Grade: analysis.GradeB},
			},
			Fatigue: []analysis.FatigueComparison{
				{Metric: analysis.MetricCadence, Label: "Cadence", FirstHalf: 176, SecondHalf: 172, Change: -2.3, Direction: analysis.DirectionDegraded},
			},
			Compliance: &analysis.WorkoutCompliance{
				WorkoutName:       "Tempo Run",
				CompliancePercent: 100,
				StepsHit:          1,
				TotalSteps:        1,
				DistanceStatus:    analysis.DistanceHit,
				TargetDistance:    10000,
				ActualDistance:    10000,
				StepBreakdown: []analysis.StepCompliance{{
					StepType:   "Interval",
					LapsUsed:   []int{1, 2},
					ActualPace: 300,
					PaceTarget: &analysis.PaceTarget{Fast: 290, Slow: 310},
					Status:     analysis.StatusHit,
				}},
			},
			StrideEfficiency: analysis.StrideEfficiency{
				Regression: analysis.Regression{Slope: -1, Intercept: 420, RSquared: 1, N: 120},
				Assessment: "Strong elastic response to higher cadence",
			},
			AerobicEfficiency: &analysis.AerobicEfficiency{
				EfficiencyFactor: 1.31,
				Decoupling:       4.2,
				Assessment:       "Good aerobic fitness",
			},
			Coaching: analysis.CoachingInsights{
				AtAGlance:      "Solid run with good form fundamentals",
				WhatWentWell:   []string{"Good cadence maintained throughout"},
				AreasToAddress: []string{"Cadence degraded by 2.3% in second half"},
				FocusCue:       "Quick feet, quick turnover",
			},
			HasRunningDynamics: true,
			TimeSeries:         samples,
		},
	}

	var buf bytes.Buffer
	if err := newTestRenderer(config.DisplayConfig{}).Activity(&buf, detail); err != nil {
		t.Fatalf("Activity() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Tempo Run",
		"Feb 1, 2026",
		"10.00 km",
		"5:00/km",
		"152 bpm",
		"174.5 spm",
		"degraded",
		"Compliance",
		"100%",
		"4:50/km - 5:10/km",
		"1,2",
		"Strong elastic response to higher cadence",
		"n=120",
		"Efficiency factor 1.31",
		"Decoupling +4.2%",
		"Good aerobic fitness",
		"+ Good cadence maintained throughout",
		"Quick feet, quick turnover",
		"Cadence (spm)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 120)
	for i := range data {
		data[i] = float64(i % 2)
	}
	got := downsample(data, 60)
	if len(got) != 60 {
		t.Fatalf("len = %d, want 60", len(got))
	}
	for _, v := range got {
		if v != 0.5 {
			t.Fatalf("bucket = %v, want 0.5", v)
		}
	}
	if short := downsample([]float64{1, 2}, 60); len(short) != 2 {
		t.Errorf("short data should pass through, got %v", short)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "-"},
		{59, "0:59"},
		{3000, "50:00"},
		{3723, "1:02:03"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
