package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var stepTypeLabels = map[string]string{
	"warmup":    "Warmup",
	"warm_up":   "Warmup",
	"cooldown":  "Cooldown",
	"cool_down": "Cooldown",
	"active":    "Active",
	"interval":  "Interval",
	"recovery":  "Recovery",
	"rest":      "Recovery",
	"other":     "Interval", // Garmin uses "other" for work steps
	"run":       "Run",
	"work":      "Work",
}

// FormatStepType returns the display label for a workout step type.
func FormatStepType(stepType string) string {
	if label, ok := stepTypeLabels[strings.ToLower(stepType)]; ok {
		return label
	}
	words := strings.Fields(strings.ReplaceAll(stepType, "_", " "))
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// FormatPace formats sec/km as M:SS. Unknown pace is "--:--".
func FormatPace(secPerKm float64) string {
	if secPerKm <= 0 {
		return "--:--"
	}
	mins := int(secPerKm) / 60
	secs := int(secPerKm) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
