package analysis

import (
	"fmt"
	"math"
)

// CoachingInsights is the plain-language feedback shown with an activity.
type CoachingInsights struct {
	AtAGlance      string   `json:"atAGlance"`
	WhatWentWell   []string `json:"whatWentWell"`
	AreasToAddress []string `json:"areasToAddress"`
	FocusCue       string   `json:"focusCue"`
}

const defaultFocusCue = "Focus on smooth, efficient running"

// GenerateCoachingInsights turns graded metrics and fatigue deltas into feedback.
// Metrics the sensor did not report are skipped. The focus cue comes from the
// last weak metric in cadence, GCT, vertical ratio order.
func GenerateCoachingInsights(m SummaryMetrics, fatigue []FatigueComparison) CoachingInsights {
	var well, issues []string
	cue := defaultFocusCue

	if m.AvgCadence != nil {
		if goodGrade(m.AvgCadence.Grade) {
			well = append(well, "Good cadence maintained throughout")
		} else {
			issues = append(issues, "Cadence could be higher - aim for 180 spm")
			cue = "Quick feet, quick turnover"
		}
	}

	if m.AvgGCT != nil {
		if goodGrade(m.AvgGCT.Grade) {
			well = append(well, "Efficient ground contact time")
		} else {
			issues = append(issues, "Ground contact time is elevated - work on elastic recoil")
			cue = "Light and springy off the ground"
		}
	}

	if m.AvgGCTBalance != nil {
		balance := m.AvgGCTBalance.Value
		if BalanceDeviation(balance) <= 2 {
			well = append(well, "Well-balanced GCT between legs")
		} else {
			side := "right"
			if balance > BalancedGCT {
				side = "left"
			}
			issues = append(issues, fmt.Sprintf("GCT imbalance detected - spending more time on %s foot", side))
		}
	}

	if m.AvgVerticalRatio != nil {
		if goodGrade(m.AvgVerticalRatio.Grade) {
			well = append(well, "Good vertical efficiency")
		} else {
			issues = append(issues, "Too much vertical bounce - focus on forward motion")
			cue = "Run tall, eyes forward"
		}
	}

	for _, f := range fatigue {
		if f.Direction == DirectionDegraded {
			issues = append(issues, fmt.Sprintf("%s degraded by %.1f%% in second half", f.Label, math.Abs(f.Change)))
		}
	}

	glance := atAGlance(m, len(well))
	if len(well) == 0 {
		well = []string{"Completed the run"}
	}
	if len(issues) == 0 {
		issues = []string{"Keep up the consistent training"}
	}

	return CoachingInsights{
		AtAGlance:      glance,
		WhatWentWell:   well,
		AreasToAddress: issues,
		FocusCue:       cue,
	}
}

func atAGlance(m SummaryMetrics, wellCount int) string {
	grades := m.Grades()
	aCount := 0
	for _, g := range []Grade{grades.Cadence, grades.GCT, grades.GCTBalance, grades.VerticalRatio} {
		if g == GradeA {
			aCount++
		}
	}

	switch {
	case aCount >= 3:
		return "Excellent biomechanics - all systems firing well"
	case aCount >= 2:
		return "Solid run with good form fundamentals"
	case wellCount > 0 && m.hasAnyGrade():
		return "Room for improvement in running economy"
	case m.hasAnyGrade():
		return "Focus on form drills to improve efficiency"
	default:
		return "No running dynamics recorded for this run"
	}
}

func (m SummaryMetrics) hasAnyGrade() bool {
	return m.AvgCadence != nil || m.AvgGCT != nil || m.AvgGCTBalance != nil || m.AvgVerticalRatio != nil
}

func goodGrade(g Grade) bool {
	return g == GradeA || g == GradeB
}
