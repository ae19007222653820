package analysis

import "math"

// Physiological bounds for the cadence/GCT regression. Points outside them are
// dropped before fitting.
const (
	MinRegressionCadence = 140.0
	MaxRegressionCadence = 200.0
	MinRegressionGCT     = 180.0
	MaxRegressionGCT     = 320.0
)

// CadenceGCTPoint is one paired cadence/ground-contact-time observation.
type CadenceGCTPoint struct {
	Cadence float64 `json:"cadence"`
	GCT     float64 `json:"gct"`
}

// Regression is an ordinary least-squares fit of GCT on cadence.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	N         int     `json:"n"` // points used after filtering
}

// CadenceGCTPoints pairs cadence and GCT from samples that report both.
func CadenceGCTPoints(samples []Sample) []CadenceGCTPoint {
	points := make([]CadenceGCTPoint, 0, len(samples))
	for _, s := range samples {
		cad, ok := metricValue(s, MetricCadence)
		if !ok {
			continue
		}
		gct, ok := metricValue(s, MetricGCT)
		if !ok {
			continue
		}
		points = append(points, CadenceGCTPoint{Cadence: cad, GCT: gct})
	}
	return points
}

// Correlate fits gct = slope*cadence + intercept. With fewer than two usable
// points or no cadence variance the zero Regression is returned. R² is zero
// when GCT has no variance.
func Correlate(points []CadenceGCTPoint) Regression {
	var xs, ys []float64
	for _, p := range points {
		// written as positive range checks so NaN fails them
		if !(p.Cadence >= MinRegressionCadence && p.Cadence <= MaxRegressionCadence) {
			continue
		}
		if !(p.GCT >= MinRegressionGCT && p.GCT <= MaxRegressionGCT) {
			continue
		}
		xs = append(xs, p.Cadence)
		ys = append(ys, p.GCT)
	}

	n := len(xs)
	if n < 2 {
		return Regression{N: n}
	}

	meanX, meanY := mean(xs), mean(ys)
	var sxx, sxy, syy float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return Regression{N: n}
	}

	slope := sxy / sxx
	reg := Regression{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		N:         n,
	}
	if syy > 0 {
		reg.RSquared = math.Min(1, (sxy*sxy)/(sxx*syy))
	}
	return reg
}

// StrideEfficiencyAssessment describes how strongly ground contact shortens as
// cadence rises.
func StrideEfficiencyAssessment(r Regression) string {
	switch {
	case r.N < 2:
		return "Not enough running dynamics data"
	case r.RSquared < 0.1:
		return "Ground contact independent of cadence"
	case r.Slope < 0 && r.RSquared >= 0.5:
		return "Strong elastic response to higher cadence"
	case r.Slope < 0:
		return "Moderate elastic response to higher cadence"
	default:
		return "Ground contact rises with cadence - check overstriding"
	}
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
