package analysis

import "math"

// Direction classifies how a metric moved between the two halves of a run.
type Direction string

const (
	DirectionImproved Direction = "improved"
	DirectionDegraded Direction = "degraded"
	DirectionStable   Direction = "stable"
)

// DefaultFatigueEpsilon is the percent change treated as noise.
const DefaultFatigueEpsilon = 2.0

// FatigueComparison compares a metric between the first and second half of a run.
type FatigueComparison struct {
	Metric     MetricKey `json:"metricKey"`
	Label      string    `json:"metric"`
	FirstHalf  float64   `json:"firstHalf"`
	SecondHalf float64   `json:"secondHalf"`
	Change     float64   `json:"change"` // percent, signed
	Direction  Direction `json:"changeDirection"`
}

// DefaultFatigueMetrics are compared when the caller does not choose.
var DefaultFatigueMetrics = []MetricKey{
	MetricCadence,
	MetricGCT,
	MetricGCTBalance,
	MetricVerticalRatio,
	MetricHeartRate,
}

var metricLabels = map[MetricKey]string{
	MetricCadence:             "Cadence",
	MetricGCT:                 "Ground Contact Time",
	MetricGCTBalance:          "GCT Balance",
	MetricVerticalRatio:       "Vertical Ratio",
	MetricHeartRate:           "Heart Rate",
	MetricVerticalOscillation: "Vertical Oscillation",
	MetricStrideLength:        "Stride Length",
	MetricPower:               "Power",
}

// MetricLabel returns the display name of a metric.
func MetricLabel(metric MetricKey) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return string(metric)
}

// higherIsBetter reports the metric polarity used for fatigue direction.
// GCT balance is compared on its deviation from 50, so lower is better.
func higherIsBetter(metric MetricKey) bool {
	switch metric {
	case MetricCadence, MetricStrideLength, MetricPower:
		return true
	default:
		return false
	}
}

// FatigueComparator splits a run in two by elapsed time and compares metric averages.
type FatigueComparator struct {
	// Epsilon is the absolute percent change below which a metric is stable.
	Epsilon float64
}

// CompareFatigue runs a comparator with DefaultFatigueEpsilon.
func CompareFatigue(samples []Sample, metrics []MetricKey) ([]FatigueComparison, error) {
	return FatigueComparator{Epsilon: DefaultFatigueEpsilon}.Compare(samples, metrics)
}

// Compare splits samples at the midpoint of their elapsed-time span, so uneven
// sampling rates still give two halves of equal duration. A metric is omitted
// when either half has no values for it or the first-half average is zero.
func (c FatigueComparator) Compare(samples []Sample, metrics []MetricKey) ([]FatigueComparison, error) {
	if err := checkSamplesOrdered(samples); err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return []FatigueComparison{}, nil
	}

	firstHalf, secondHalf := splitHalves(samples)

	comparisons := make([]FatigueComparison, 0, len(metrics))
	for _, metric := range metrics {
		first, ok := halfMean(firstHalf, metric)
		if !ok || first == 0 {
			continue
		}
		second, ok := halfMean(secondHalf, metric)
		if !ok {
			continue
		}

		change := (second - first) / first * 100
		comparisons = append(comparisons, FatigueComparison{
			Metric:     metric,
			Label:      MetricLabel(metric),
			FirstHalf:  round1(first),
			SecondHalf: round1(second),
			Change:     round1(change),
			Direction:  c.direction(metric, change),
		})
	}

	return comparisons, nil
}

func (c FatigueComparator) direction(metric MetricKey, change float64) Direction {
	if math.Abs(change) < c.Epsilon {
		return DirectionStable
	}
	improved := change < 0
	if higherIsBetter(metric) {
		improved = change > 0
	}
	if improved {
		return DirectionImproved
	}
	return DirectionDegraded
}

// splitHalves splits ordered samples at the midpoint of elapsed time.
func splitHalves(samples []Sample) (first, second []Sample) {
	start := samples[0].Offset
	end := samples[len(samples)-1].Offset
	mid := start + (end-start)/2

	split := len(samples)
	for i, s := range samples {
		if s.Offset >= mid {
			split = i
			break
		}
	}
	return samples[:split], samples[split:]
}

// halfMean averages a metric over one half, using the balance deviation for GCT balance.
func halfMean(samples []Sample, metric MetricKey) (float64, bool) {
	var total float64
	var count int
	for _, s := range samples {
		v, ok := metricValue(s, metric)
		if !ok {
			continue
		}
		if metric == MetricGCTBalance {
			v = BalanceDeviation(v)
		}
		total += v
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
