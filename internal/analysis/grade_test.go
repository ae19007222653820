package analysis

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestGradeMetric(t *testing.T) {
	tests := []struct {
		name   string
		metric MetricKey
		value  float64
		want   Grade
	}{
		{"cadence elite", MetricCadence, 185, GradeA},
		{"cadence boundary A", MetricCadence, 180, GradeA},
		{"cadence just below A", MetricCadence, 179.9, GradeB},
		{"cadence boundary B", MetricCadence, 170, GradeB},
		{"cadence boundary C", MetricCadence, 160, GradeC},
		{"cadence low", MetricCadence, 150, GradeD},
		{"cadence zero", MetricCadence, 0, GradeD},

		{"gct short", MetricGCT, 200, GradeA},
		{"gct boundary A", MetricGCT, 220, GradeA},
		{"gct boundary B", MetricGCT, 250, GradeB},
		{"gct boundary C", MetricGCT, 280, GradeC},
		{"gct long", MetricGCT, 281, GradeD},

		{"balance perfect", MetricGCTBalance, 50, GradeA},
		{"balance 1 left", MetricGCTBalance, 51, GradeA},
		{"balance 2 right", MetricGCTBalance, 48, GradeB},
		{"balance 4 left", MetricGCTBalance, 54, GradeC},
		{"balance 5 right", MetricGCTBalance, 45, GradeD},

		{"vertical ratio low", MetricVerticalRatio, 7.2, GradeA},
		{"vertical ratio boundary B", MetricVerticalRatio, 9, GradeB},
		{"vertical ratio boundary C", MetricVerticalRatio, 10, GradeC},
		{"vertical ratio high", MetricVerticalRatio, 11.5, GradeD},

		{"ungraded metric", MetricHeartRate, 150, GradeNone},
		{"unknown metric", MetricKey("bogus"), 1, GradeNone},
		{"NaN is D", MetricGCT, math.NaN(), GradeD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeMetric(tt.metric, tt.value)
			if got != tt.want {
				t.Errorf("GradeMetric(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.want)
			}
		})
	}
}

func TestGradeMetric_CadenceMonotonic(t *testing.T) {
	rank := map[Grade]int{GradeA: 0, GradeB: 1, GradeC: 2, GradeD: 3}
	prev := GradeMetric(MetricCadence, 220)
	for v := 220.0; v >= 100; v -= 0.5 {
		g := GradeMetric(MetricCadence, v)
		if rank[g] < rank[prev] {
			t.Fatalf("grade improved from %s to %s as cadence dropped to %v", prev, g, v)
		}
		prev = g
	}
}

func TestGradeMetric_BalanceSymmetric(t *testing.T) {
	for d := 0.0; d <= 10; d += 0.25 {
		left := GradeMetric(MetricGCTBalance, 50+d)
		right := GradeMetric(MetricGCTBalance, 50-d)
		if left != right {
			t.Errorf("deviation %v: grade(50+d) = %s, grade(50-d) = %s", d, left, right)
		}
	}
}

func TestSummarizeMetrics(t *testing.T) {
	samples := []Sample{
		{Offset: 0, Cadence: floatPtr(178), GCT: floatPtr(240), HeartRate: floatPtr(140)},
		{Offset: 1, Cadence: floatPtr(182), GCT: floatPtr(250), HeartRate: floatPtr(150)},
		{Offset: 2, Cadence: nil, GCT: floatPtr(245)},
	}

	got := SummarizeMetrics(samples)
	want := SummaryMetrics{
		AvgCadence:   &GradeValue{Value: 180, Grade: GradeA},
		AvgGCT:       &GradeValue{Value: 245, Grade: GradeB},
		AvgHeartRate: floatPtr(145),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SummarizeMetrics() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeMetrics_MissingSensorIsOmittedNotFailed(t *testing.T) {
	samples := []Sample{
		{Offset: 0, Cadence: floatPtr(150)},
		{Offset: 1, Cadence: floatPtr(152)},
	}

	got := SummarizeMetrics(samples)
	if got.AvgGCTBalance != nil || got.AvgGCT != nil || got.AvgVerticalRatio != nil {
		t.Errorf("metrics without samples should be nil, got %+v", got)
	}
	grades := got.Grades()
	if grades.GCTBalance != GradeNone {
		t.Errorf("missing balance graded %q, want empty", grades.GCTBalance)
	}
	if grades.Cadence != GradeD {
		t.Errorf("cadence grade = %q, want D", grades.Cadence)
	}
}

func TestHasRunningDynamics(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		want    bool
	}{
		{"empty", nil, false},
		{
			name: "majority with balance",
			samples: []Sample{
				{GCTBalance: floatPtr(50)},
				{GCTBalance: floatPtr(49.5)},
				{},
			},
			want: true,
		},
		{
			name: "exactly half is not enough",
			samples: []Sample{
				{GCTBalance: floatPtr(50)},
				{},
			},
			want: false,
		},
		{
			name:    "watch-only gct without balance",
			samples: []Sample{{GCT: floatPtr(240)}, {GCT: floatPtr(241)}},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRunningDynamics(tt.samples); got != tt.want {
				t.Errorf("HasRunningDynamics() = %v, want %v", got, tt.want)
			}
		})
	}
}
