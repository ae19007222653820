// Package fitfile turns Garmin FIT activity files into analysis inputs.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"runcoach/internal/analysis"
)

// ErrNoSession is returned for activity files without a session message.
var ErrNoSession = errors.New("activity file has no session message")

// Garmin records running cadence as strides per minute; values below this are doubled.
const halfCadenceLimit = 120

// DefaultName is used until the caller supplies a descriptive activity name.
const DefaultName = "Run"

// DecodeFile opens and decodes a FIT activity file.
func DecodeFile(path string) (*analysis.Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a FIT activity from r.
func Decode(r io.Reader) (*analysis.Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	return FromActivity(activity)
}

// FromActivity converts decoded FIT messages. Samples are offset from the first
// valid record timestamp; records that repeat or go back in time are dropped.
func FromActivity(activity *fit.ActivityFile) (*analysis.Activity, error) {
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}
	session := activity.Sessions[0]

	samples, start := buildSamples(activity.Records)

	summary := analysis.Summary{
		Name:          DefaultName,
		Sport:         strings.ToLower(fmt.Sprint(session.Sport)),
		StartTime:     validTimeOrZero(session.StartTime),
		TotalDistance: safePositive(session.GetTotalDistanceScaled()),
		TotalDuration: safePositive(session.GetTotalElapsedTimeScaled()),
	}
	if summary.TotalDuration == 0 {
		summary.TotalDuration = safePositive(session.GetTotalTimerTimeScaled())
	}
	if summary.StartTime.IsZero() {
		summary.StartTime = start
	}
	if summary.TotalDistance > 0 {
		summary.AvgPace = summary.TotalDuration / summary.TotalDistance * 1000
	}
	if hr := validUint8(session.AvgHeartRate); hr > 0 {
		v := float64(hr)
		summary.AvgHeartRate = &v
	}

	if start.IsZero() {
		start = summary.StartTime
	}

	return &analysis.Activity{
		Summary: summary,
		Samples: samples,
		Laps:    buildLaps(activity.Laps, start),
	}, nil
}

func buildSamples(records []*fit.RecordMsg) ([]analysis.Sample, time.Time) {
	samples := make([]analysis.Sample, 0, len(records))

	var start, last time.Time
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		if start.IsZero() {
			start = ts
		} else if !ts.After(last) {
			continue
		}
		last = ts

		samples = append(samples, sampleFromRecord(rec, ts.Sub(start).Seconds()))
	}

	return samples, start
}

func sampleFromRecord(rec *fit.RecordMsg, offset float64) analysis.Sample {
	s := analysis.Sample{Offset: offset}

	if hr := validUint8(rec.HeartRate); hr > 0 {
		s.HeartRate = ptr(float64(hr))
	}
	if cad, ok := extractCadence(rec); ok {
		s.Cadence = ptr(cad)
	}
	if speed, ok := extractSpeed(rec); ok && speed > 0 {
		s.Pace = ptr(1000 / speed)
	}
	if v := safePositive(rec.GetStanceTimeScaled()); v > 0 {
		s.GCT = ptr(v)
	}
	if v := safePositive(rec.GetStanceTimeBalanceScaled()); v > 0 {
		s.GCTBalance = ptr(v)
	}
	if v := safePositive(rec.GetVerticalRatioScaled()); v > 0 {
		s.VerticalRatio = ptr(v)
	}
	if v := safePositive(rec.GetVerticalOscillationScaled()); v > 0 {
		s.VerticalOscillation = ptr(v / 10) // mm to cm
	}
	if v := safePositive(rec.GetStepLengthScaled()); v > 0 {
		s.StrideLength = ptr(v / 1000) // mm to m
	}
	if p := validUint16(rec.Power); p > 0 {
		s.Power = ptr(float64(p))
	}

	return s
}

func buildLaps(msgs []*fit.LapMsg, start time.Time) []analysis.Lap {
	laps := make([]analysis.Lap, 0, len(msgs))

	offset := 0.0
	for _, msg := range msgs {
		if msg == nil {
			continue
		}

		duration := safePositive(msg.GetTotalElapsedTimeScaled())
		if duration == 0 {
			duration = safePositive(msg.GetTotalTimerTimeScaled())
		}

		lapStart := offset
		if ts := validTimeOrZero(msg.StartTime); !ts.IsZero() && !start.IsZero() && !ts.Before(start) {
			lapStart = ts.Sub(start).Seconds()
		}

		lap := analysis.Lap{
			Number:      len(laps) + 1,
			StartOffset: lapStart,
			Distance:    safePositive(msg.GetTotalDistanceScaled()),
			Duration:    duration,
		}
		if lap.Distance > 0 && lap.Duration > 0 {
			lap.AvgPace = lap.Duration / lap.Distance * 1000
		}
		if hr := validUint8(msg.AvgHeartRate); hr > 0 {
			lap.AvgHeartRate = ptr(float64(hr))
		}
		if cad := normalizeCadence(cadenceFromAny(msg.GetAvgCadence())); cad > 0 {
			lap.AvgCadence = ptr(cad)
		}
		if v := safePositive(msg.GetAvgStanceTimeScaled()); v > 0 {
			lap.AvgGCT = ptr(v)
		}
		if v := safePositive(msg.GetAvgStanceTimeBalanceScaled()); v > 0 {
			lap.AvgGCTBalance = ptr(v)
		}
		if v := safePositive(msg.GetAvgVerticalRatioScaled()); v > 0 {
			lap.AvgVerticalRatio = ptr(v)
		}

		laps = append(laps, lap)
		offset = lapStart + duration
	}

	return laps
}

func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	cad := float64(rec.Cadence)
	if frac := rec.GetFractionalCadenceScaled(); isFinite(frac) && frac > 0 {
		cad += frac
	}
	cad = normalizeCadence(cad)
	return cad, cad > 0
}

// normalizeCadence converts strides per minute to steps per minute.
func normalizeCadence(cad float64) float64 {
	if cad > 0 && cad < halfCadenceLimit {
		return cad * 2
	}
	return cad
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case int:
		if x < 0 {
			return 0
		}
		return float64(x)
	case float64:
		return safePositive(x)
	default:
		return 0
	}
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 {
	return &v
}
