package workout

import (
	"math"
	"strings"
	"unicode"

	"runcoach/internal/analysis"
)

// Select picks the workout that best matches an activity. Workouts are ranked by
// how many words of their name appear in the activity name, then by how close
// their planned distance is to the activity distance. Returns nil when
// workouts is empty.
func Select(workouts []analysis.PlannedWorkout, activityName string, distance float64) *analysis.PlannedWorkout {
	if len(workouts) == 0 {
		return nil
	}

	activityWords := wordSet(nameWords(activityName))

	best := -1
	bestName := -1.0
	bestDist := math.Inf(1)
	for i, w := range workouts {
		nameScore := overlap(nameWords(w.Name), activityWords)
		distScore := distanceGap(w, distance)

		if nameScore > bestName || (nameScore == bestName && distScore < bestDist) {
			best, bestName, bestDist = i, nameScore, distScore
		}
	}

	w := workouts[best]
	return &w
}

// NameFromStem turns a FIT file stem such as
// "2026-01-08_New_York_-_Quality_Session_21487950438" into words for matching.
func NameFromStem(stem string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(stem)), " ")
}

// overlap is the fraction of the workout's words found in the activity name.
func overlap(workoutWords []string, activityWords map[string]bool) float64 {
	if len(workoutWords) == 0 {
		return 0
	}
	n := 0
	for _, w := range workoutWords {
		if activityWords[w] {
			n++
		}
	}
	return float64(n) / float64(len(workoutWords))
}

// distanceGap is the relative difference between planned and actual distance.
// Unknown distances rank last.
func distanceGap(w analysis.PlannedWorkout, actual float64) float64 {
	planned := w.EstimatedDistance
	if !(planned > 0) {
		planned = analysis.PlannedDistance(w.Steps)
	}
	if !(planned > 0) || !(actual > 0) {
		return math.Inf(1)
	}
	return math.Abs(actual-planned) / planned
}

// nameWords lowercases and splits a name into words, dropping numbers and
// single letters so dates and activity ids don't count as matches.
func nameWords(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	words := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || isNumber(f) || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}
	return words
}

func wordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
