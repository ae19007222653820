package analysis

import "math"

// Aerobic efficiency needs this many usable pace and HR samples.
const minEfficiencySamples = 120

// AerobicEfficiency relates speed to heart rate over a run.
type AerobicEfficiency struct {
	// EfficiencyFactor is speed in m/min per bpm. Higher is better;
	// typical values range from 1.0 to 2.0.
	EfficiencyFactor float64 `json:"efficiencyFactor"`
	// Decoupling is the efficiency loss from first to second half, in percent.
	// Positive means the second half was less efficient.
	Decoupling float64 `json:"decoupling"`
	Assessment string  `json:"assessment"`
}

// ComputeAerobicEfficiency returns nil when fewer than two minutes of samples
// carry both a moving pace and a plausible heart rate.
func ComputeAerobicEfficiency(samples []Sample) *AerobicEfficiency {
	ef, n := efficiencyFactor(samples)
	if n < minEfficiencySamples || ef == 0 {
		return nil
	}

	result := &AerobicEfficiency{EfficiencyFactor: math.Round(ef*100) / 100}

	firstHalf, secondHalf := splitHalves(samples)
	first, _ := efficiencyFactor(firstHalf)
	second, _ := efficiencyFactor(secondHalf)
	if first > 0 && second > 0 {
		result.Decoupling = round1((first/second - 1) * 100)
		result.Assessment = DecouplingAssessment(result.Decoupling)
	}

	return result
}

// efficiencyFactor averages speed and heart rate over samples where the runner
// is moving and the heart rate is plausible. It also returns the sample count.
func efficiencyFactor(samples []Sample) (float64, int) {
	var totalVelocity, totalHR float64
	var count int

	for _, s := range samples {
		if s.Pace == nil || s.HeartRate == nil || *s.Pace <= 0 {
			continue
		}
		vel := 1000 / *s.Pace
		hr := *s.HeartRate
		if vel > 0.5 && hr > 80 && hr < 220 {
			totalVelocity += vel
			totalHR += hr
			count++
		}
	}

	if count == 0 {
		return 0, 0
	}

	avgVelocityMPM := totalVelocity / float64(count) * 60
	return avgVelocityMPM / (totalHR / float64(count)), count
}

// DecouplingAssessment returns a human-readable decoupling assessment
func DecouplingAssessment(decoupling float64) string {
	switch {
	case decoupling < 3:
		return "Excellent aerobic base"
	case decoupling < 5:
		return "Good aerobic fitness"
	case decoupling < 8:
		return "Developing aerobic base"
	case decoupling < 12:
		return "Needs more easy miles"
	default:
		return "Aerobic system needs work"
	}
}
