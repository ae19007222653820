package analysis

import (
	"math"
	"strings"
)

// StepStatus is the pace-compliance outcome of one workout step.
type StepStatus string

const (
	StatusHit      StepStatus = "hit"
	StatusPartial  StepStatus = "partial"
	StatusFast     StepStatus = "fast"
	StatusMissed   StepStatus = "missed"
	StatusNoTarget StepStatus = "no_target"
)

// StepCompliance is the evaluated outcome of one planned step.
type StepCompliance struct {
	StepType       string      `json:"stepType"`
	RawStepType    string      `json:"rawStepType"`
	LapsUsed       []int       `json:"lapsUsed"`
	ActualPace     float64     `json:"actualPaceSecKm"` // 0 when no distance was recorded
	ActualDistance float64     `json:"actualDistanceM"`
	ActualDuration float64     `json:"actualDurationSec"`
	PaceTarget     *PaceTarget `json:"targetPaceRange,omitempty"`
	TargetDistance float64     `json:"targetDistanceM,omitempty"`
	TargetDuration float64     `json:"targetDurationSec,omitempty"`
	Status         StepStatus  `json:"status"`
}

// MatchOptions tunes the greedy lap-to-step matcher.
type MatchOptions struct {
	// DistanceFill is the fraction of a distance target that closes a step.
	DistanceFill float64
	// DurationFill is the fraction of a duration target that closes a step.
	DurationFill float64
	// PartialBand is the share of the target range width tolerated past the slow bound.
	PartialBand float64
	// SessionDistance and SessionDuration replace lap totals for single-step
	// workouts whose laps cover less than 95% of the session distance.
	SessionDistance float64
	SessionDuration float64
}

// DefaultMatchOptions returns the tunables used by MatchSteps.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		DistanceFill: 0.9,
		DurationFill: 0.8,
		PartialBand:  0.10,
	}
}

// Matcher assigns recorded laps to planned workout steps.
type Matcher struct {
	Options MatchOptions
}

// MatchSteps matches laps to steps with DefaultMatchOptions.
func MatchSteps(laps []Lap, steps []PlannedStep) ([]StepCompliance, error) {
	return Matcher{Options: DefaultMatchOptions()}.Match(laps, steps)
}

// Match walks steps in order and greedily assigns consecutive laps to each one
// until the step's distance or duration target is filled. Every step after the
// current one keeps at least one lap in reserve. Steps without a distance or
// duration take exactly one lap. Laps left over after the last step are not
// assigned; steps left over after the last lap get no laps.
func (m Matcher) Match(laps []Lap, steps []PlannedStep) ([]StepCompliance, error) {
	if err := checkLapsOrdered(laps); err != nil {
		return nil, err
	}

	steps = FlattenSteps(steps)
	results := make([]StepCompliance, 0, len(steps))
	singleStep := len(steps) == 1

	cursor := 0
	for i, step := range steps {
		if cursor >= len(laps) {
			results = append(results, m.unmatched(step))
			continue
		}

		reserve := len(steps) - i - 1
		maxTake := len(laps) - cursor - reserve
		if maxTake < 1 {
			maxTake = 1
		}

		taken := m.takeLaps(laps[cursor:], step, maxTake)
		results = append(results, m.evaluate(step, laps[cursor:cursor+taken], singleStep))
		cursor += taken
	}

	return results, nil
}

// takeLaps returns how many laps from the front of laps belong to step.
func (m Matcher) takeLaps(laps []Lap, step PlannedStep, maxTake int) int {
	var target float64
	var measure func(Lap) float64

	switch {
	case step.TargetDistance > 0:
		target = step.TargetDistance * m.Options.DistanceFill
		measure = lapDistance
	case step.TargetDuration > 0:
		target = step.TargetDuration * m.Options.DurationFill
		measure = lapDuration
	default:
		return 1
	}

	var accumulated float64
	for n := 0; n < maxTake; n++ {
		accumulated += measure(laps[n])
		if accumulated >= target {
			return n + 1
		}
	}
	return maxTake
}

func (m Matcher) evaluate(step PlannedStep, laps []Lap, singleStep bool) StepCompliance {
	result := newStepCompliance(step)

	var weightedPace, pacedDistance float64
	for _, lap := range laps {
		dist := lapDistance(lap)
		result.LapsUsed = append(result.LapsUsed, lap.Number)
		result.ActualDistance += dist
		result.ActualDuration += lapDuration(lap)

		if pace := lapPace(lap); pace > 0 {
			weightedPace += pace * dist
			pacedDistance += dist
		}
	}
	if pacedDistance > 0 {
		result.ActualPace = weightedPace / pacedDistance
	}

	// Laps often miss part of a single-step run; the session totals are authoritative then.
	opts := m.Options
	if singleStep && opts.SessionDistance > 0 && opts.SessionDuration > 0 &&
		result.ActualDistance < opts.SessionDistance*0.95 {
		result.ActualDistance = opts.SessionDistance
		result.ActualDuration = opts.SessionDuration
		result.ActualPace = opts.SessionDuration / (opts.SessionDistance / 1000)
	}

	result.Status = m.status(result.PaceTarget, result.ActualPace)
	return result
}

func (m Matcher) unmatched(step PlannedStep) StepCompliance {
	result := newStepCompliance(step)
	if result.PaceTarget != nil {
		result.Status = StatusMissed
	}
	return result
}

func (m Matcher) status(target *PaceTarget, pace float64) StepStatus {
	if target == nil || pace <= 0 {
		return StatusNoTarget
	}

	band := (target.Slow - target.Fast) * m.Options.PartialBand
	switch {
	case pace >= target.Fast && pace <= target.Slow:
		return StatusHit
	case pace < target.Fast:
		return StatusFast
	case pace <= target.Slow+band:
		return StatusPartial
	default:
		return StatusMissed
	}
}

func newStepCompliance(step PlannedStep) StepCompliance {
	return StepCompliance{
		StepType:       FormatStepType(step.Type),
		RawStepType:    step.Type,
		LapsUsed:       []int{},
		PaceTarget:     normalizePaceTarget(step.PaceTarget),
		TargetDistance: positive(step.TargetDistance),
		TargetDuration: positive(step.TargetDuration),
		Status:         StatusNoTarget,
	}
}

// normalizePaceTarget drops incomplete ranges and orders the bounds.
func normalizePaceTarget(t *PaceTarget) *PaceTarget {
	if t == nil || !(t.Fast > 0) || !(t.Slow > 0) {
		return nil
	}
	fast, slow := t.Fast, t.Slow
	if fast > slow {
		fast, slow = slow, fast
	}
	return &PaceTarget{Fast: fast, Slow: slow}
}

// FlattenSteps expands repeat groups and drops bare repeat markers.
func FlattenSteps(steps []PlannedStep) []PlannedStep {
	flat := make([]PlannedStep, 0, len(steps))
	for _, step := range steps {
		if len(step.Steps) > 0 {
			reps := step.Repetitions
			if reps < 1 {
				reps = 1
			}
			children := FlattenSteps(step.Steps)
			for r := 0; r < reps; r++ {
				flat = append(flat, children...)
			}
			continue
		}
		if strings.EqualFold(step.Type, "repeat") {
			continue
		}
		flat = append(flat, step)
	}
	return flat
}

func lapDistance(l Lap) float64 { return positive(l.Distance) }

func lapDuration(l Lap) float64 { return positive(l.Duration) }

// lapPace prefers the recorded lap pace and falls back to duration over distance.
func lapPace(l Lap) float64 {
	if pace := positive(l.AvgPace); pace > 0 {
		return pace
	}
	dist, dur := lapDistance(l), lapDuration(l)
	if dist == 0 || dur == 0 {
		return 0
	}
	return dur / (dist / 1000)
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
