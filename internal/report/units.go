package report

import (
	"fmt"

	"runcoach/internal/analysis"
	"runcoach/internal/config"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/metersPerKm)
}

// FormatPace formats a sec/km pace in the user's preferred unit, with label
func (u Units) FormatPace(secPerKm float64) string {
	if !(secPerKm > 0) {
		return "-"
	}
	return analysis.FormatPace(u.ConvertPace(secPerKm)) + "/" + u.PaceLabel()
}

// ConvertPace converts a sec/km pace into seconds per preferred unit
func (u Units) ConvertPace(secPerKm float64) float64 {
	if u.cfg.PaceUnit == "min/mi" {
		return secPerKm * metersPerMile / metersPerKm
	}
	return secPerKm
}

// PaceLabel returns the per-unit label of paces ("mi" or "km")
func (u Units) PaceLabel() string {
	if u.cfg.PaceUnit == "min/mi" {
		return "mi"
	}
	return "km"
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}
