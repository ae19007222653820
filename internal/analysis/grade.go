package analysis

import "math"

// MetricKey identifies a running-dynamics metric.
type MetricKey string

const (
	MetricCadence             MetricKey = "cadence"
	MetricGCT                 MetricKey = "gct"
	MetricGCTBalance          MetricKey = "gctBalance"
	MetricVerticalRatio       MetricKey = "verticalRatio"
	MetricHeartRate           MetricKey = "heartRate"
	MetricVerticalOscillation MetricKey = "verticalOscillation"
	MetricStrideLength        MetricKey = "strideLength"
	MetricPower               MetricKey = "power"
)

// Grade is a letter grade for a metric value.
type Grade string

const (
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
	GradeD    Grade = "D"
	GradeNone Grade = ""
)

// BalancedGCT is the GCT balance value of a perfectly symmetric stride.
const BalancedGCT = 50.0

type threshold struct {
	bound float64
	grade Grade
}

type gradeTable struct {
	higherIsBetter bool
	// ordered best to worst; anything past the last entry is D
	thresholds []threshold
}

var gradeTables = map[MetricKey]gradeTable{
	MetricCadence: {
		higherIsBetter: true,
		thresholds:     []threshold{{180, GradeA}, {170, GradeB}, {160, GradeC}},
	},
	MetricGCT: {
		thresholds: []threshold{{220, GradeA}, {250, GradeB}, {280, GradeC}},
	},
	// applied to |balance - 50|
	MetricGCTBalance: {
		thresholds: []threshold{{1, GradeA}, {2, GradeB}, {4, GradeC}},
	},
	MetricVerticalRatio: {
		thresholds: []threshold{{8, GradeA}, {9, GradeB}, {10, GradeC}},
	},
}

// GradeValue pairs a metric value with the grade it earns.
type GradeValue struct {
	Value float64 `json:"value"`
	Grade Grade   `json:"grade"`
}

// GradeMetric assigns an A-D grade to a metric value. GCT balance is given as the
// raw left-side percentage. Metrics without a table return GradeNone.
func GradeMetric(metric MetricKey, value float64) Grade {
	table, ok := gradeTables[metric]
	if !ok {
		return GradeNone
	}
	if metric == MetricGCTBalance {
		value = BalanceDeviation(value)
	}
	if math.IsNaN(value) {
		return GradeD
	}

	for _, t := range table.thresholds {
		if table.higherIsBetter && value >= t.bound {
			return t.grade
		}
		if !table.higherIsBetter && value <= t.bound {
			return t.grade
		}
	}
	return GradeD
}

// NewGradeValue grades value and rounds it to one decimal for display.
func NewGradeValue(metric MetricKey, value float64) GradeValue {
	return GradeValue{
		Value: math.Round(value*10) / 10,
		Grade: GradeMetric(metric, value),
	}
}

// BalanceDeviation returns how far a GCT balance percentage is from symmetric.
func BalanceDeviation(balance float64) float64 {
	return math.Abs(balance - BalancedGCT)
}

// SummaryMetrics holds activity averages. A nil field means the sensor did not
// report the metric, which is different from a D grade.
type SummaryMetrics struct {
	AvgCadence       *GradeValue `json:"avgCadence,omitempty"`
	AvgGCT           *GradeValue `json:"avgGct,omitempty"`
	AvgGCTBalance    *GradeValue `json:"avgGctBalance,omitempty"`
	AvgVerticalRatio *GradeValue `json:"avgVerticalRatio,omitempty"`
	AvgHeartRate     *float64    `json:"avgHeartRate,omitempty"`
}

// GradeSummary is the compact grade-only view used in activity lists.
type GradeSummary struct {
	Cadence       Grade `json:"cadence,omitempty"`
	GCT           Grade `json:"gct,omitempty"`
	GCTBalance    Grade `json:"gctBalance,omitempty"`
	VerticalRatio Grade `json:"verticalRatio,omitempty"`
}

// SummarizeMetrics averages the graded metrics over all samples that carry them.
func SummarizeMetrics(samples []Sample) SummaryMetrics {
	var m SummaryMetrics

	if avg, ok := meanOf(samples, MetricCadence); ok {
		gv := NewGradeValue(MetricCadence, avg)
		m.AvgCadence = &gv
	}
	if avg, ok := meanOf(samples, MetricGCT); ok {
		gv := NewGradeValue(MetricGCT, avg)
		m.AvgGCT = &gv
	}
	if avg, ok := meanOf(samples, MetricGCTBalance); ok {
		gv := NewGradeValue(MetricGCTBalance, avg)
		m.AvgGCTBalance = &gv
	}
	if avg, ok := meanOf(samples, MetricVerticalRatio); ok {
		gv := NewGradeValue(MetricVerticalRatio, avg)
		m.AvgVerticalRatio = &gv
	}
	if avg, ok := meanOf(samples, MetricHeartRate); ok {
		hr := math.Round(avg*10) / 10
		m.AvgHeartRate = &hr
	}

	return m
}

// Grades returns the grade-only view; missing metrics stay empty.
func (m SummaryMetrics) Grades() GradeSummary {
	var g GradeSummary
	if m.AvgCadence != nil {
		g.Cadence = m.AvgCadence.Grade
	}
	if m.AvgGCT != nil {
		g.GCT = m.AvgGCT.Grade
	}
	if m.AvgGCTBalance != nil {
		g.GCTBalance = m.AvgGCTBalance.Grade
	}
	if m.AvgVerticalRatio != nil {
		g.VerticalRatio = m.AvgVerticalRatio.Grade
	}
	return g
}

// HasRunningDynamics reports whether the activity was recorded with a running
// dynamics pod. Watches without one do not report GCT balance, so more than
// half of the samples must carry it.
func HasRunningDynamics(samples []Sample) bool {
	if len(samples) == 0 {
		return false
	}
	count := 0
	for _, s := range samples {
		if s.GCTBalance != nil {
			count++
		}
	}
	return float64(count) > float64(len(samples))*0.5
}

// metricValue extracts a metric from a sample.
func metricValue(s Sample, metric MetricKey) (float64, bool) {
	var v *float64
	switch metric {
	case MetricCadence:
		v = s.Cadence
	case MetricGCT:
		v = s.GCT
	case MetricGCTBalance:
		v = s.GCTBalance
	case MetricVerticalRatio:
		v = s.VerticalRatio
	case MetricHeartRate:
		v = s.HeartRate
	case MetricVerticalOscillation:
		v = s.VerticalOscillation
	case MetricStrideLength:
		v = s.StrideLength
	case MetricPower:
		v = s.Power
	}
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// meanOf averages a metric over the samples that report it.
func meanOf(samples []Sample, metric MetricKey) (float64, bool) {
	var total float64
	var count int
	for _, s := range samples {
		if v, ok := metricValue(s, metric); ok {
			total += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}
